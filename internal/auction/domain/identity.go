package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the closed set of caller roles the engine authorizes against.
// Adding a role means touching every switch over Role, which is intentional.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

// ParseRole converts the session provider's role string to a Role
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleFarmer:
		return RoleFarmer, nil
	case RoleBuyer:
		return RoleBuyer, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Identity is the authenticated caller as supplied by the external session
// provider. It is always passed explicitly into service calls, the engine
// never reads caller identity from ambient state.
type Identity struct {
	ID   uuid.UUID
	Role Role
}
