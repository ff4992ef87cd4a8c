package roles_test

import (
	"testing"

	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/roles"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    roles.Role
		wantErr bool
	}{
		{in: "admin", want: roles.Admin},
		{in: "Staff", want: roles.Staff},
		{in: " TECHNICIAN ", want: roles.Technician},
		{in: "customer", want: roles.Customer},
		{in: "", wantErr: true},
		{in: "superuser", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := roles.Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, apperrors.ErrInvalidRole)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSetMembership(t *testing.T) {
	require.True(t, roles.Operators.Contains(roles.Technician))
	require.False(t, roles.Operators.Contains(roles.Customer))
	require.True(t, roles.AdminOnly.Contains(roles.Admin))
	require.False(t, roles.AdminOnly.Contains(roles.Staff))
	require.Equal(t, 0, roles.None.Len())

	var zero roles.Set
	require.False(t, zero.Contains(roles.Admin))

	s := roles.NewSet(roles.Customer, roles.Admin, roles.Role("ghost"))
	require.Equal(t, []roles.Role{roles.Admin, roles.Customer}, s.Roles())
	require.Equal(t, "{admin,customer}", s.String())
}

func TestLabel(t *testing.T) {
	require.Equal(t, "Technician", roles.Technician.Label())
	require.Equal(t, "", roles.Role("nobody").Label())
}
