package memory

import (
	"context"

	"github.com/jhoicas/stock-reconciler/internal/application/inventory"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones y deshace sus cambios si fn devuelve error.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repositorios atados a la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	log := &txLog{}
	err := fn(ctx, &ProductRepo{s: r.s, tx: log}, &MovementRepo{s: r.s, tx: log})
	if err != nil {
		for i := len(log.undo) - 1; i >= 0; i-- {
			r.s.mu.Lock()
			log.undo[i]()
			r.s.mu.Unlock()
		}
	}
	return err
}
