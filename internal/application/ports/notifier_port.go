package ports

import "context"

// LowStockNotifier puerto de salida para avisar que un producto cruzó su umbral de stock bajo.
// Es fire-and-forget: un error se registra pero nunca afecta la reconciliación.
// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, productID string, currentActualStock, threshold int) error
}
