package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	// Register general tasks
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	// Register sweep tasks
	RegisterHandler(StatusSweepTask.TaskID(), StatusSweepTask.HandleExecution)

	// Register reminder tasks
	RegisterHandler(PaymentReminderTask.TaskID(), PaymentReminderTask.HandleExecution)
	RegisterHandler(PolicyReminderTask.TaskID(), PolicyReminderTask.HandleExecution)
	RegisterHandler(WhatsappBatchTask.TaskID(), WhatsappBatchTask.HandleExecution)
}
