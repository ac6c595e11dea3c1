// Package workflow holds the role/state capability model for purchase
// requests. Every query is a total function: unknown roles or states get the
// most restrictive answer, never an error. Callers gate mutations on these
// predicates; the package itself performs no I/O.
package workflow

import "fmt"

// transitionRule describes which states a role may move a request into.
type transitionRule struct {
	// anyCurrent is offered regardless of the current state.
	anyCurrent []State
	// byState overrides the offer for specific current states.
	byState map[State][]State
	// currentOnly offers just the current state when nothing else matches.
	currentOnly bool
}

// capability is the full answer sheet for one role.
type capability struct {
	create bool
	delete bool
	cancel bool

	// editAlways short-circuits the state check (cancelled still wins).
	editAlways bool
	editStates []State

	manageOrders  bool
	manageActions bool

	fields      []Field
	transitions transitionRule
}

var managedStates = []State{StateAssigned, StatePurchased, StateInWarehouse, StateDelivered}

// capabilities is the role capability table. Keeping it as data (rather than
// scattered conditionals) lets Validate check completeness and keeps the
// HTTP layer declarative.
var capabilities = map[Role]capability{
	RoleAdmin: {
		create:        true,
		delete:        true,
		editAlways:    true,
		manageOrders:  true,
		manageActions: true,
		fields:        AllFields,
		transitions:   transitionRule{anyCurrent: managedStates},
	},
	RoleManager: {
		create:       true,
		delete:       true,
		cancel:       true,
		editStates:   []State{StateAssigned},
		manageOrders: true,
		fields:       AllFields,
		transitions:  transitionRule{anyCurrent: managedStates},
	},
	RoleBuyer: {
		editStates:   []State{StateAssigned},
		manageOrders: true,
		fields:       fieldsWithout(AllFields, FieldPresupuesto),
		transitions:  transitionRule{anyCurrent: []State{StateAssigned, StatePurchased}},
	},
	RoleWarehouse: {
		editStates: []State{StatePurchased, StateInWarehouse},
		fields:     []Field{FieldEstado},
		transitions: transitionRule{
			byState: map[State][]State{
				StatePurchased:   {StatePurchased, StateInWarehouse, StateDelivered},
				StateInWarehouse: {StateInWarehouse, StateDelivered},
			},
			currentOnly: true,
		},
	},
	RoleObserver: {
		transitions: transitionRule{currentOnly: true},
	},
	RoleSEP: {
		manageActions: true,
		transitions:   transitionRule{currentOnly: true},
	},
}

// restrictive is the answer for roles missing from the table.
var restrictive = capability{transitions: transitionRule{currentOnly: true}}

func capabilityFor(role Role) capability {
	if c, ok := capabilities[role]; ok {
		return c
	}
	return restrictive
}

// CanCreate reports whether the role may create purchase requests.
func CanCreate(role Role) bool { return capabilityFor(role).create }

// CanDelete reports whether the role may delete purchase requests.
func CanDelete(role Role) bool { return capabilityFor(role).delete }

// CanCancel reports whether the role may cancel purchase requests.
func CanCancel(role Role) bool { return capabilityFor(role).cancel }

// CanManageOrders reports whether the role may attach, update or remove
// purchase orders.
func CanManageOrders(role Role) bool { return capabilityFor(role).manageOrders }

// CanManageActions reports whether the role may maintain SEP action records.
func CanManageActions(role Role) bool { return capabilityFor(role).manageActions }

// CanEdit reports whether the role may modify a request currently in the
// given state. StateNone means no record exists yet (creation context).
// Cancelled requests are immutable for every role, admins included.
func CanEdit(role Role, state State) bool {
	if state == StateCancelled {
		return false
	}
	c := capabilityFor(role)
	if c.editAlways {
		return true
	}
	if state == StateNone {
		return false
	}
	for _, s := range c.editStates {
		if s == state {
			return true
		}
	}
	return false
}

// EditableFields returns the fields the role may change on a request in the
// given state, in presentation order. Cancelled requests expose no fields.
func EditableFields(role Role, state State) []Field {
	if state == StateCancelled {
		return nil
	}
	src := capabilityFor(role).fields
	if len(src) == 0 {
		return nil
	}
	out := make([]Field, len(src))
	copy(out, src)
	return out
}

// IsFieldEditable reports whether a single field is editable for the role in
// the given state.
func IsFieldEditable(field Field, role Role, state State) bool {
	for _, f := range EditableFields(role, state) {
		if f == field {
			return true
		}
	}
	return false
}

// AvailableNextStates returns the states the role may move a request into
// from the current state, in workflow order. Transitions absent from the
// result must be rejected by the caller; the function itself never errors.
func AvailableNextStates(role Role, current State) []State {
	rule := capabilityFor(role).transitions

	if states, ok := rule.byState[current]; ok {
		out := make([]State, len(states))
		copy(out, states)
		return out
	}
	if len(rule.anyCurrent) > 0 {
		out := make([]State, len(rule.anyCurrent))
		copy(out, rule.anyCurrent)
		return out
	}
	if rule.currentOnly && current != StateNone {
		return []State{current}
	}
	return nil
}

// Validate checks the capability table for completeness: every role must be
// present and every role/state combination must produce well-formed answers.
// It is exercised from tests so a table edit cannot ship half-defined.
func Validate() error {
	for _, role := range Roles {
		if _, ok := capabilities[role]; !ok {
			return fmt.Errorf("workflow: role %q missing from capability table", role)
		}
		for _, f := range capabilityFor(role).fields {
			if !knownField(f) {
				return fmt.Errorf("workflow: role %q grants unknown field %q", role, f)
			}
		}
		states := append([]State{StateNone}, States...)
		for _, state := range states {
			for _, next := range AvailableNextStates(role, state) {
				if _, ok := ParseState(string(next)); !ok {
					return fmt.Errorf("workflow: role %q offers unknown state %q from %q", role, next, state)
				}
				// Cancelled may only appear as the no-op echo of the
				// current state; it is never reachable as a move.
				if next == StateCancelled && state != StateCancelled {
					return fmt.Errorf("workflow: role %q offers cancelled as a transition from %q", role, state)
				}
			}
			if state == StateCancelled && CanEdit(role, state) {
				return fmt.Errorf("workflow: role %q may edit a cancelled request", role)
			}
			if state == StateCancelled && len(EditableFields(role, state)) != 0 {
				return fmt.Errorf("workflow: role %q has editable fields on a cancelled request", role)
			}
		}
	}
	return nil
}

func knownField(f Field) bool {
	for _, known := range AllFields {
		if known == f {
			return true
		}
	}
	return false
}
