package roles

import "strings"

// Set is an immutable set of roles. The zero value is empty.
type Set struct {
	members map[Role]struct{}
}

// Named sets used by the route table and page definitions.
var (
	All        = NewSet(Admin, Staff, Technician, Customer)
	Operators  = NewSet(Admin, Staff, Technician)
	Management = NewSet(Admin, Staff)
	AdminOnly  = NewSet(Admin)
	None       = NewSet()
)

// NewSet builds a set, ignoring roles outside the enumeration.
func NewSet(rs ...Role) Set {
	members := make(map[Role]struct{}, len(rs))
	for _, r := range rs {
		if r.Valid() {
			members[r] = struct{}{}
		}
	}
	return Set{members: members}
}

// Contains reports whether r is a member.
func (s Set) Contains(r Role) bool {
	_, ok := s.members[r]
	return ok
}

// Roles lists the members in enumeration order.
func (s Set) Roles() []Role {
	out := make([]Role, 0, len(s.members))
	for _, r := range Values() {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s Set) Len() int {
	return len(s.members)
}

func (s Set) String() string {
	names := make([]string, 0, len(s.members))
	for _, r := range s.Roles() {
		names = append(names, string(r))
	}
	return "{" + strings.Join(names, ",") + "}"
}
