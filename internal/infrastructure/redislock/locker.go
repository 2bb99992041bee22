package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-reconciler/internal/application/ports"
	"github.com/jhoicas/stock-reconciler/internal/domain"
	"github.com/jhoicas/stock-reconciler/pkg/logger"
)

var _ ports.OrderLocker = (*OrderLocker)(nil)

// releaseScript borra la clave solo si sigue teniendo nuestro token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OrderLocker candado por pedido con SET NX PX. El TTL debe superar el timeout de la
// reconciliación para que el candado no expire a mitad de proceso.
type OrderLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewOrderLocker construye el candado.
func NewOrderLocker(client *redis.Client, ttl time.Duration, log *logger.Logger) *OrderLocker {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderLocker{client: client, ttl: ttl, log: log.Named("order_lock")}
}

// LockKey clave del candado de un pedido.
func LockKey(externalOrderID int64) string {
	return fmt.Sprintf("order:%d:lock", externalOrderID)
}

// Lock adquiere el candado o devuelve domain.ErrLockBusy.
func (l *OrderLocker) Lock(ctx context.Context, externalOrderID int64) (func(), error) {
	key := LockKey(externalOrderID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire order lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrLockBusy
	}

	unlock := func() {
		// El contexto de la petición puede estar cancelado; liberar igual.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
			l.log.ForOrder(externalOrderID).Error().Err(err).Msg("no se pudo liberar el candado")
		}
	}
	return unlock, nil
}
