package model

// Kind is the work category of an effort or a plan event.
type Kind string

const (
	KindProduction Kind = "production"
	KindMontage    Kind = "montage"
)

// Valid reports whether k is a known work kind.
func (k Kind) Valid() bool { return k == KindProduction || k == KindMontage }

// Role describes which work kinds an employee can be scheduled for.
type Role string

const (
	RoleProduction Role = "production"
	RoleMontage    Role = "montage"
	RoleBoth       Role = "both"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleProduction || r == RoleMontage || r == RoleBoth }

// Covers reports whether the role is eligible for the given work kind.
func (r Role) Covers(k Kind) bool {
	switch k {
	case KindProduction:
		return r == RoleProduction || r == RoleBoth
	case KindMontage:
		return r == RoleMontage || r == RoleBoth
	default:
		return false
	}
}

// Employee is a member of the workforce. The scheduling engine treats
// employees as read-only; they are maintained through the settings API.
type Employee struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        Role     `json:"role"`
	WeeklyHours float64  `json:"weeklyHours"`
	DaysMask    WorkWeek `json:"daysMask"`
	Active      bool     `json:"active"`
	Color       string   `json:"color,omitempty"`
}

// Blocker is a registered full-day absence for one employee on one date.
// Overnight is carried for forward compatibility and not consumed by any
// capacity computation.
type Blocker struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Date       Date   `json:"dateIso"`
	Overnight  bool   `json:"overnight"`
	Reason     string `json:"reason,omitempty"`
}
