package models

import (
	"time"
)

// SystemSettingsID is the primary key of the single global settings row
const SystemSettingsID = "global"

// SystemSettings is the global configuration singleton: alert windows,
// reminder message templates and the list of insurer companies.
type SystemSettings struct {
	ID        string    `gorm:"type:varchar(20);primarykey" json:"id"`
	UpdatedAt time.Time `json:"updated_at"`

	PaymentAlertDays int `gorm:"default:5" json:"payment_alert_days"`
	PolicyAlertDays  int `gorm:"default:15" json:"policy_alert_days"`

	PaymentMessageTemplate string `gorm:"type:text" json:"payment_message_template"`
	PolicyMessageTemplate  string `gorm:"type:text" json:"policy_message_template"`

	Companies []string `gorm:"serializer:json" json:"companies"`
}

// DefaultSystemSettings returns the settings used when the global row is
// missing, matching what the configuration page seeds on first save.
func DefaultSystemSettings() SystemSettings {
	return SystemSettings{
		ID:                     SystemSettingsID,
		PaymentAlertDays:       5,
		PolicyAlertDays:        15,
		PaymentMessageTemplate: "Hola {nombre}! Te recordamos que el pago de tu cuota de {monto} vence el día {fecha}. Agencia La Segunda.",
		PolicyMessageTemplate:  "Hola {nombre}! Te recordamos que tu póliza N° {nro_poliza} está próxima a vencer el día {fecha}. ¿Deseas renovarla?",
		Companies:              []string{"La Segunda"},
	}
}
