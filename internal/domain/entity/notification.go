package entity

import "time"

// Tipos de notificación.
const (
	NotificationLowStock = "LOW_STOCK"
)

// Notification aviso persistido para el back-office (p.ej. stock bajo).
type Notification struct {
	ID        string
	Type      string
	ProductID string
	Message   string
	Payload   []byte
	CreatedAt time.Time
}
