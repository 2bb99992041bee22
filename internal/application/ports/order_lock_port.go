package ports

import "context"

// OrderLocker serializa el procesamiento de entregas concurrentes del mismo pedido.
type OrderLocker interface {
	// Lock adquiere el candado del pedido. Devuelve domain.ErrLockBusy si otra entrega lo tiene.
	// unlock debe llamarse siempre que err == nil.
	Lock(ctx context.Context, externalOrderID int64) (unlock func(), err error)
}

// DeliveryDeduper recuerda los ids de entrega ya procesados (reintentos del upstream).
type DeliveryDeduper interface {
	// MarkDelivered devuelve true si es la primera vez que se ve deliveryID.
	MarkDelivered(ctx context.Context, deliveryID string) (bool, error)
	// Forget elimina la marca, para permitir reintentos cuando el procesamiento falló.
	Forget(ctx context.Context, deliveryID string) error
}
