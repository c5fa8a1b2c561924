package domain

import "time"

// Role represents the role a user registered with.
type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
)

// DefaultRating is assigned to every user on first registration.
const DefaultRating = 5.0

// User represents a passenger or driver identity, keyed by phone number.
// Role is fixed at first registration; there is no role-change path.
type User struct {
	ID        string
	Phone     string
	Name      string
	Role      Role
	Rating    float64
	CreatedAt time.Time
}
