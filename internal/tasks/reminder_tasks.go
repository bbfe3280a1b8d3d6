package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"cobranzas_app_echo/internal/models"
	"cobranzas_app_echo/internal/services"
)

// Recipient is one rendered message awaiting delivery
type Recipient struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// WhatsappBatchArgs defines the arguments for a delivery batch task
type WhatsappBatchArgs struct {
	Recipients   []Recipient `json:"recipients"`
	AttemptCount int         `json:"attempt_count"`
}

// RenderTemplate substitutes the {placeholder} tokens used by the
// configurable reminder templates.
func RenderTemplate(template string, values map[string]string) string {
	res := template
	for key, value := range values {
		res = strings.ReplaceAll(res, "{"+key+"}", value)
	}
	return res
}

/* ----- delivery batch ----- */

// WhatsappBatchTaskDef delivers a batch of rendered messages through WAHA,
// rescheduling a narrowed one-time task for recipients that failed.
type WhatsappBatchTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *WhatsappBatchTaskDef) TaskID() string {
	return "send_whatsapp_batch"
}

// CreateTask builds a ScheduledTask record for this task
func (t *WhatsappBatchTaskDef) CreateTask(args WhatsappBatchArgs, due time.Time) (*models.ScheduledTask, error) {
	return BuildScheduledTask(t.TaskID(), args, due, nil, models.ScheduledTaskTypeOneTime, 3)
}

// HandleExecution sends each message, collecting failures for retry
func (t *WhatsappBatchTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	argsBytes, err := json.Marshal(task.Arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	var parsedArgs WhatsappBatchArgs
	if err := json.Unmarshal(argsBytes, &parsedArgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}

	wahaService := services.NewWahaService()

	total := len(parsedArgs.Recipients)
	successCount := 0
	skippedCount := 0
	var failed []Recipient
	var failures []string

	for _, recipient := range parsedArgs.Recipients {
		if recipient.Phone == "" {
			skippedCount++
			continue
		}

		if err := wahaService.SendMessage(recipient.Phone, recipient.Message); err != nil {
			log.Printf("Failed to send reminder to %s: %v", recipient.Phone, err)
			failed = append(failed, recipient)
			failures = append(failures, fmt.Sprintf("%s: %v", recipient.Phone, err))
		} else {
			successCount++
		}
	}

	result := map[string]interface{}{
		"total":   total,
		"success": successCount,
		"skipped": skippedCount,
		"failure": len(failed),
	}

	if len(failed) > 0 {
		result["errors"] = failures

		attempt := parsedArgs.AttemptCount
		maxRetries := task.MaxAttempt

		if attempt < maxRetries {
			log.Printf("Partial failure: %d recipients failed. Rescheduling for attempt %d", len(failed), attempt+1)

			newArgs := WhatsappBatchArgs{
				Recipients:   failed,
				AttemptCount: attempt + 1,
			}

			// Re-schedule in 5 minutes
			newTask, err := t.CreateTask(newArgs, time.Now().Add(5*time.Minute))
			if err == nil {
				db.Create(newTask)
			} else {
				log.Printf("Failed to create retry task: %v", err)
			}
		} else {
			log.Printf("Max attempts (%d) reached for %d failed recipients.", maxRetries, len(failed))
			notifyDeliveryFailure(failed, failures)
			return result, fmt.Errorf("max attempts reached, failed to deliver to %d recipients", len(failed))
		}
	}

	return result, nil
}

// notifyDeliveryFailure emails the agency inbox when a batch exhausts its
// retries, so undelivered reminders can be followed up by phone.
func notifyDeliveryFailure(failed []Recipient, failures []string) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		return
	}

	body := fmt.Sprintf("No se pudieron entregar %d recordatorios por WhatsApp:\n\n%s",
		len(failed), strings.Join(failures, "\n"))
	err := services.NewEmailService().SendEmail(
		[]string{adminEmail},
		"Recordatorios sin entregar",
		body,
	)
	if err != nil {
		log.Printf("Failed to email delivery report: %v", err)
	}
}

// WhatsappBatchTask is the singleton instance of WhatsappBatchTaskDef
var WhatsappBatchTask = &WhatsappBatchTaskDef{}

/* ----- payment reminders ----- */

// PaymentReminderTaskDef builds reminder messages for installments due
// within the payment alert window and enqueues a delivery batch.
type PaymentReminderTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *PaymentReminderTaskDef) TaskID() string {
	return "send_payment_reminders"
}

// HandleExecution queries the alert window and enqueues the rendered batch
func (t *PaymentReminderTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	settings, err := services.NewSettingsService(db, nil).Get(ctx)
	if err != nil {
		return nil, err
	}

	installments, err := services.NewCollectionService(db, nil).UpcomingInstallments(ctx, settings.PaymentAlertDays)
	if err != nil {
		return nil, err
	}

	recipients := BuildPaymentReminders(installments, settings.PaymentMessageTemplate)
	if len(recipients) == 0 {
		return map[string]interface{}{"status": "skipped", "message": "No upcoming installments"}, nil
	}

	batch, err := WhatsappBatchTask.CreateTask(WhatsappBatchArgs{Recipients: recipients}, time.Now())
	if err != nil {
		return nil, err
	}
	if err := db.Create(batch).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":     "success",
		"recipients": len(recipients),
		"batch_id":   batch.ID,
	}, nil
}

// BuildPaymentReminders renders one message per upcoming installment whose
// client has a phone on record.
func BuildPaymentReminders(installments []models.PolicyInstallment, template string) []Recipient {
	var recipients []Recipient
	for _, inst := range installments {
		client := inst.Policy.Client
		if client.Phone == "" {
			continue
		}
		msg := RenderTemplate(template, map[string]string{
			"nombre": client.FullName,
			"monto":  fmt.Sprintf("$%.2f", inst.Amount),
			"fecha":  inst.DueDate.Format("02/01/2006"),
		})
		recipients = append(recipients, Recipient{Phone: client.Phone, Message: msg})
	}
	return recipients
}

// PaymentReminderTask is the singleton instance of PaymentReminderTaskDef
var PaymentReminderTask = &PaymentReminderTaskDef{}

/* ----- policy renewal reminders ----- */

// PolicyReminderTaskDef builds renewal messages for policies expiring
// within the policy alert window and enqueues a delivery batch.
type PolicyReminderTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *PolicyReminderTaskDef) TaskID() string {
	return "send_policy_reminders"
}

// HandleExecution queries the alert window and enqueues the rendered batch
func (t *PolicyReminderTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	settings, err := services.NewSettingsService(db, nil).Get(ctx)
	if err != nil {
		return nil, err
	}

	policies, err := services.NewCollectionService(db, nil).ExpiringPolicies(ctx, settings.PolicyAlertDays)
	if err != nil {
		return nil, err
	}

	recipients := BuildPolicyReminders(policies, settings.PolicyMessageTemplate)
	if len(recipients) == 0 {
		return map[string]interface{}{"status": "skipped", "message": "No expiring policies"}, nil
	}

	batch, err := WhatsappBatchTask.CreateTask(WhatsappBatchArgs{Recipients: recipients}, time.Now())
	if err != nil {
		return nil, err
	}
	if err := db.Create(batch).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":     "success",
		"recipients": len(recipients),
		"batch_id":   batch.ID,
	}, nil
}

// BuildPolicyReminders renders one renewal message per expiring policy
// whose client has a phone on record.
func BuildPolicyReminders(policies []models.Policy, template string) []Recipient {
	var recipients []Recipient
	for _, policy := range policies {
		if policy.Client.Phone == "" {
			continue
		}
		msg := RenderTemplate(template, map[string]string{
			"nombre":     policy.Client.FullName,
			"nro_poliza": policy.PolicyNumber,
			"fecha":      policy.EndDate.Format("02/01/2006"),
		})
		recipients = append(recipients, Recipient{Phone: policy.Client.Phone, Message: msg})
	}
	return recipients
}

// PolicyReminderTask is the singleton instance of PolicyReminderTaskDef
var PolicyReminderTask = &PolicyReminderTaskDef{}
