package orderstatus

// Action acción de reconciliación sobre el libro de stock.
type Action string

const (
	ActionReserve  Action = "RESERVE"
	ActionComplete Action = "COMPLETE"
	ActionRelease  Action = "RELEASE"
	ActionRefund   Action = "REFUND"
)

// ActualDirection dirección en que la acción mueve el stock actual (-1, 0, +1).
func (a Action) ActualDirection() int {
	switch a {
	case ActionComplete:
		return -1
	case ActionRefund:
		return 1
	default:
		return 0
	}
}

// Resolution resultado de resolver una transición de estado.
type Resolution struct {
	Previous string
	Next     string
	Actions  []Action
	// Overridden acciones que coincidieron pero fueron anuladas por una regla de mayor precedencia.
	Overridden []Action
	// Ambiguous se marca si quedan acciones con efectos opuestos sobre el stock actual.
	Ambiguous bool
}

// Has indica si la resolución contiene la acción.
func (r Resolution) Has(a Action) bool {
	for _, x := range r.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// Empty indica que la transición no dispara acciones.
func (r Resolution) Empty() bool {
	return len(r.Actions) == 0
}

type transitionRule struct {
	action Action
	// onCreate la regla también aplica cuando no hay estado previo.
	onCreate bool
	// overrides acción que esta regla reemplaza cuando ambas coinciden.
	overrides Action
	match     func(prev, next string) bool
}

// entersBucket la transición entra a b desde fuera de b.
func entersBucket(b Bucket) func(prev, next string) bool {
	return func(prev, next string) bool {
		return Classify(prev) != b && Classify(next) == b
	}
}

// rules evaluadas en orden e independientes entre sí. Un pedido completado que pasa a
// reembolsado ya descontó stock actual: se devuelve (REFUND) en lugar de liberar reserva.
var rules = []transitionRule{
	{action: ActionReserve, onCreate: true, match: entersBucket(BucketReserving)},
	{action: ActionComplete, onCreate: true, match: entersBucket(BucketCompleting)},
	{action: ActionRelease, match: entersBucket(BucketCancelling)},
	{
		action:    ActionRefund,
		overrides: ActionRelease,
		match: func(prev, next string) bool {
			return Classify(prev) == BucketCompleting && Normalize(next) == StatusRefunded
		},
	},
}

// Resolve decide qué acciones aplicar para la transición previous -> next del mismo pedido.
// previous vacío es la creación del pedido: solo aplican RESERVE y COMPLETE.
func Resolve(previous, next string) Resolution {
	prev, nxt := Normalize(previous), Normalize(next)
	res := Resolution{Previous: prev, Next: nxt}
	if prev == nxt {
		return res
	}

	creating := prev == ""
	matched := make([]Action, 0, 2)
	overridden := make(map[Action]bool)
	for _, rule := range rules {
		if creating && !rule.onCreate {
			continue
		}
		if !rule.match(prev, nxt) {
			continue
		}
		matched = append(matched, rule.action)
		if rule.overrides != "" {
			overridden[rule.overrides] = true
		}
	}

	for _, a := range matched {
		if overridden[a] {
			res.Overridden = append(res.Overridden, a)
			continue
		}
		res.Actions = append(res.Actions, a)
	}
	res.Ambiguous = conflicting(res.Actions)
	return res
}

func conflicting(actions []Action) bool {
	var up, down bool
	for _, a := range actions {
		switch a.ActualDirection() {
		case 1:
			up = true
		case -1:
			down = true
		}
	}
	return up && down
}
