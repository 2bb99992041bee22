package repository

import (
	"context"

	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
)

// NotificationRepository persiste avisos para el back-office.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
}
