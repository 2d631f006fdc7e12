package model

const (
	RoleDriver    = "DRIVER"
	RolePassenger = "PASSENGER"
)

// Actor is the authenticated identity injected by the auth middleware.
type Actor struct {
	ID   string
	Role string
}
