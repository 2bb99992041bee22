package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-reconciler/internal/application/ports"
)

var _ ports.DeliveryDeduper = (*DeliveryDeduper)(nil)

// DeliveryDeduper recuerda ids de entrega durante ttl.
type DeliveryDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeliveryDeduper construye el deduplicador.
func NewDeliveryDeduper(client *redis.Client, ttl time.Duration) *DeliveryDeduper {
	return &DeliveryDeduper{client: client, ttl: ttl}
}

func deliveryKey(id string) string { return "webhook:delivery:" + id }

// MarkDelivered devuelve true la primera vez que se ve el id.
func (d *DeliveryDeduper) MarkDelivered(ctx context.Context, deliveryID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, deliveryKey(deliveryID), time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark delivery: %w", err)
	}
	return ok, nil
}

// Forget borra la marca del id.
func (d *DeliveryDeduper) Forget(ctx context.Context, deliveryID string) error {
	if err := d.client.Del(ctx, deliveryKey(deliveryID)).Err(); err != nil {
		return fmt.Errorf("forget delivery: %w", err)
	}
	return nil
}
