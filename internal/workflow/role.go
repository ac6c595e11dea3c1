package workflow

// Role identifies what a user is allowed to do across the purchasing flow.
// Roles are orthogonal to request states; the capability table in
// permissions.go binds the two together.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "encargado_compras"
	RoleBuyer     Role = "comprador"
	RoleWarehouse Role = "bodega"
	RoleObserver  Role = "observador"
	RoleSEP       Role = "usuario_sep"
)

// Roles lists every known role in a stable order.
var Roles = []Role{RoleAdmin, RoleManager, RoleBuyer, RoleWarehouse, RoleObserver, RoleSEP}

// ParseRole resolves a stored role value. Unknown values report false so
// callers can fall back to the most restrictive role.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

func (r Role) String() string { return string(r) }
