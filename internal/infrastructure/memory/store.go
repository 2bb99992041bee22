// Package memory implementa los puertos de persistencia en memoria.
// Se usa con STORAGE_DRIVER=memory (desarrollo local) y en los tests de casos de uso.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-reconciler/internal/domain"
	"github.com/jhoicas/stock-reconciler/internal/domain/entity"
	"github.com/jhoicas/stock-reconciler/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
	_ repository.OrderStateRepository    = (*OrderStateRepo)(nil)
	_ repository.NotificationRepository  = (*NotificationRepo)(nil)
)

// Store guarda el estado completo. Seguro para uso concurrente.
type Store struct {
	mu            sync.RWMutex
	txMu          sync.Mutex
	products      map[string]*entity.Product
	byExternal    map[int64]string
	movements     []*entity.StockMovement
	orders        map[int64]*entity.OrderState
	notifications []*entity.Notification
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]*entity.Product),
		byExternal: make(map[int64]string),
		orders:     make(map[int64]*entity.OrderState),
	}
}

// txLog registra las operaciones de deshacer de una transacción en curso.
type txLog struct {
	undo []func()
}

func (l *txLog) record(fn func()) {
	if l != nil {
		l.undo = append(l.undo, fn)
	}
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Orders repositorio de estados de pedido.
func (s *Store) Orders() *OrderStateRepo { return &OrderStateRepo{s: s} }

// Notifications repositorio de avisos.
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s: s} }

// ProductRepo productos en memoria.
type ProductRepo struct {
	s  *Store
	tx *txLog
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) FindByExternalID(_ context.Context, externalID int64) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byExternal[externalID]
	if !ok {
		return nil, nil
	}
	cp := *r.s.products[id]
	return &cp, nil
}

func (r *ProductRepo) ApplyStockDelta(_ context.Context, productID string, delta entity.StockDelta) (*entity.StockChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	change := &entity.StockChange{
		ProductID:      p.ID,
		BeforeActual:   p.ActualStock,
		BeforeReserved: p.ReservedStock,
		LowStockAlert:  p.LowStockAlert,
	}
	prevUpdated := p.UpdatedAt
	p.ActualStock = max(p.ActualStock+delta.Actual, 0)
	p.ReservedStock = max(p.ReservedStock+delta.Reserved, 0)
	p.UpdatedAt = time.Now()
	change.AfterActual = p.ActualStock
	change.AfterReserved = p.ReservedStock

	r.tx.record(func() {
		p.ActualStock = change.BeforeActual
		p.ReservedStock = change.BeforeReserved
		p.UpdatedAt = prevUpdated
	})
	return change, nil
}

func (r *ProductRepo) UpsertFromCatalog(_ context.Context, product *entity.Product) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	if id, ok := r.s.byExternal[product.ExternalID]; ok {
		p := r.s.products[id]
		p.SKU = product.SKU
		p.Name = product.Name
		p.LowStockAlert = product.LowStockAlert
		p.UpdatedAt = now
		cp := *p
		return &cp, nil
	}
	p := *product
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.ActualStock = max(p.ActualStock, 0)
	p.ReservedStock = max(p.ReservedStock, 0)
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.products[p.ID] = &p
	r.s.byExternal[p.ExternalID] = p.ID
	cp := p
	return &cp, nil
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := r.s.sortedProducts()
	return paginate(list, limit, offset), nil
}

func (r *ProductRepo) ListLowStock(_ context.Context, limit int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Product
	for _, p := range r.s.sortedProducts() {
		if p.IsLowStock() {
			list = append(list, p)
		}
	}
	return paginate(list, limit, 0), nil
}

// sortedProducts copias ordenadas por ExternalID. Requiere mu tomado.
func (s *Store) sortedProducts() []*entity.Product {
	list := make([]*entity.Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ExternalID < list[j].ExternalID })
	return list
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// MovementRepo movimientos en memoria (append-only).
type MovementRepo struct {
	s  *Store
	tx *txLog
}

func (r *MovementRepo) Append(_ context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	cp := *movement
	r.s.mu.Lock()
	r.s.movements = append(r.s.movements, &cp)
	r.s.mu.Unlock()

	r.tx.record(func() {
		for i, m := range r.s.movements {
			if m.ID == cp.ID {
				r.s.movements = append(r.s.movements[:i], r.s.movements[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			cp := *m
			list = append(list, &cp)
		}
	}
	return paginate(list, limit, offset), nil
}

func (r *MovementRepo) ListByReference(_ context.Context, reference string) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.Reference == reference {
			cp := *m
			list = append(list, &cp)
		}
	}
	return list, nil
}

// OrderStateRepo estados de pedido en memoria.
type OrderStateRepo struct {
	s *Store
}

func (r *OrderStateRepo) Get(_ context.Context, externalOrderID int64) (*entity.OrderState, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.orders[externalOrderID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r *OrderStateRepo) CompareAndSwap(_ context.Context, expected string, state *entity.OrderState) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.orders[state.ExternalOrderID]
	switch {
	case !ok && expected != "":
		return false, nil
	case ok && current.Status != expected:
		return false, nil
	}
	cp := *state
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	r.s.orders[state.ExternalOrderID] = &cp
	return true, nil
}

// NotificationRepo avisos en memoria.
type NotificationRepo struct {
	s *Store
}

func (r *NotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	r.s.mu.Lock()
	r.s.notifications = append(r.s.notifications, &cp)
	r.s.mu.Unlock()
	return nil
}

// List devuelve los avisos guardados.
func (r *NotificationRepo) List() []*entity.Notification {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Notification, len(r.s.notifications))
	copy(out, r.s.notifications)
	return out
}
