package workflow

// State is the workflow position of a purchase request.
type State string

const (
	// StateNone marks the absence of a record, e.g. during creation.
	StateNone State = ""

	StateAssigned    State = "asignada"
	StatePurchased   State = "comprada"
	StateInWarehouse State = "en_bodega"
	StateDelivered   State = "entregada"
	StateCancelled   State = "anulada"
)

// States lists every persisted state in workflow order.
var States = []State{StateAssigned, StatePurchased, StateInWarehouse, StateDelivered, StateCancelled}

// ParseState resolves a stored state value.
func ParseState(s string) (State, bool) {
	for _, st := range States {
		if string(st) == s {
			return st, true
		}
	}
	return StateNone, false
}

func (s State) String() string { return string(s) }
