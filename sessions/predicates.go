package sessions

import "github.com/jrsteele09/evcenter-admin/roles"

// Every access decision in the dashboard goes through these predicates. A nil session is
// unauthenticated and satisfies none of them.

func IsAuthenticated(s *Session) bool {
	return s != nil && s.Role.Valid()
}

func InSet(s *Session, set roles.Set) bool {
	if !IsAuthenticated(s) {
		return false
	}
	return set.Contains(s.Role)
}

func HasAnyRole(s *Session, rs ...roles.Role) bool {
	return InSet(s, roles.NewSet(rs...))
}

func IsAdmin(s *Session) bool      { return HasAnyRole(s, roles.Admin) }
func IsStaff(s *Session) bool      { return HasAnyRole(s, roles.Staff) }
func IsTechnician(s *Session) bool { return HasAnyRole(s, roles.Technician) }
func IsCustomer(s *Session) bool   { return HasAnyRole(s, roles.Customer) }

// IsOperator is true for anyone who works at a service center.
func IsOperator(s *Session) bool { return InSet(s, roles.Operators) }

// Ptr returns a pointer to the session when present, for use with the predicates.
func Ptr(s Session, ok bool) *Session {
	if !ok {
		return nil
	}
	return &s
}
