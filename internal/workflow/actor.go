package workflow

// Actor is the authenticated identity performing an action. Authentication
// itself happens upstream; only the role matters for gating.
type Actor struct {
	ID     int64
	Nombre string
	Rol    Role
}
