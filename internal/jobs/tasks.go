// Package jobs define las tareas asíncronas (asynq) del reconciliador: el encolado desde
// la API y el worker que las procesa.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola por defecto.
	QueueDefault = "default"
	// TaskLowStock aviso de producto en o bajo su umbral de stock.
	TaskLowStock = "inventory:low_stock"
)

// LowStockPayload datos del aviso de stock bajo.
type LowStockPayload struct {
	ProductID   string    `json:"product_id"`
	ActualStock int       `json:"actual_stock"`
	Threshold   int       `json:"threshold"`
	DetectedAt  time.Time `json:"detected_at"`
}

// NewLowStockTask construye la tarea asynq.
func NewLowStockTask(payload LowStockPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStock, body, asynq.Queue(QueueDefault)), nil
}
