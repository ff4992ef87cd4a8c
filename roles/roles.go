package roles

import (
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
)

// Role is the closed set of dashboard roles issued by the backend.
type Role string

const (
	Admin      Role = "admin"      // Manages every center, staff, inventory and billing
	Staff      Role = "staff"      // Front desk: appointments, customers, payments
	Technician Role = "technician" // Workshop: assigned appointments, vehicles, parts
	Customer   Role = "customer"   // Vehicle owner with read access to their own records
)

// Values returns every role in display order.
func Values() []Role {
	return []Role{Admin, Staff, Technician, Customer}
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case Admin, Staff, Technician, Customer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Label is the human-readable role name.
func (r Role) Label() string {
	if !r.Valid() {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// Parse converts a backend role string. Matching is case-insensitive; unknown values are rejected.
func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("[roles Parse] %q: %w", s, apperrors.ErrInvalidRole)
	}
	return r, nil
}
