// Package orderstatus clasifica estados de pedidos upstream y resuelve qué acciones de
// inventario dispara cada transición.
package orderstatus

import (
	"strings"

	"golang.org/x/text/cases"
)

// Bucket agrupación semántica de un estado de pedido.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketReserving
	BucketCompleting
	BucketCancelling
)

func (b Bucket) String() string {
	switch b {
	case BucketReserving:
		return "RESERVING"
	case BucketCompleting:
		return "COMPLETING"
	case BucketCancelling:
		return "CANCELLING"
	default:
		return "NONE"
	}
}

// Estados WooCommerce con significado para el inventario.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusOnHold     = "on-hold"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
	StatusFailed     = "failed"
)

// buckets única tabla de clasificación: agregar un estado es agregar una línea.
var buckets = map[string]Bucket{
	StatusProcessing: BucketReserving,
	StatusOnHold:     BucketReserving,
	StatusCompleted:  BucketCompleting,
	StatusCancelled:  BucketCancelling,
	StatusRefunded:   BucketCancelling,
	StatusFailed:     BucketCancelling,
}

// WooCommerce guarda el post_status con este prefijo ("wc-processing").
const wcPrefix = "wc-"

// Normalize lleva un estado upstream a su forma canónica (sin espacios, plegado de
// mayúsculas, sin prefijo wc-).
func Normalize(status string) string {
	s := strings.TrimSpace(status)
	if s == "" {
		return ""
	}
	s = cases.Fold().String(s)
	return strings.TrimPrefix(s, wcPrefix)
}

// Classify mapea un estado a su bucket. Función pura; estados desconocidos son BucketNone.
func Classify(status string) Bucket {
	if b, ok := buckets[Normalize(status)]; ok {
		return b
	}
	return BucketNone
}
