package policy_test

import (
	"testing"

	"github.com/sanandreas/govportal/internal/policy"
	"github.com/stretchr/testify/assert"
)

func TestVisibleDepartments_SuperadminSeesAll(t *testing.T) {
	s := policy.VisibleDepartments([]string{"superadmin"})
	assert.True(t, s.All)
	for _, d := range policy.Departments {
		assert.True(t, s.Allows(d))
	}

	// Other roles present do not narrow the scope.
	s = policy.VisibleDepartments([]string{"lspd", "superadmin", "doj"})
	assert.True(t, s.All)
}

func TestVisibleDepartments_AdminAloneSeesAll(t *testing.T) {
	s := policy.VisibleDepartments([]string{"admin"})
	assert.True(t, s.All)
}

func TestVisibleDepartments_DepartmentRole(t *testing.T) {
	s := policy.VisibleDepartments([]string{"lspd"})
	assert.False(t, s.All)
	assert.True(t, s.Allows(policy.LSPD))
	assert.False(t, s.Allows(policy.DOJ))
	assert.Equal(t, []policy.Department{policy.LSPD}, s.List())
}

func TestVisibleDepartments_EmptyRoles(t *testing.T) {
	s := policy.VisibleDepartments(nil)
	assert.True(t, s.Empty())
	for _, d := range policy.Departments {
		assert.False(t, s.Allows(d))
	}
}

func TestVisibleDepartments_UnknownRolesIgnored(t *testing.T) {
	s := policy.VisibleDepartments([]string{"janitor", "lsems"})
	assert.Equal(t, []policy.Department{policy.LSEMS}, s.List())
}

func TestCanModerate(t *testing.T) {
	// Department lead: admin + matching department role.
	assert.True(t, policy.CanModerate([]string{"admin", "safd"}, policy.SAFD))
	assert.False(t, policy.CanModerate([]string{"admin", "safd"}, policy.LSPD))

	// admin alone may see everything but moderates nothing.
	assert.False(t, policy.CanModerate([]string{"admin"}, policy.SAFD))
	// A plain department member moderates nothing.
	assert.False(t, policy.CanModerate([]string{"safd"}, policy.SAFD))

	// Superadmin moderates everywhere.
	assert.True(t, policy.CanModerate([]string{"superadmin"}, policy.DOJ))
}

func TestParseDepartment(t *testing.T) {
	d, ok := policy.ParseDepartment("lspd")
	assert.True(t, ok)
	assert.Equal(t, policy.LSPD, d)

	d, ok = policy.ParseDepartment(" DOJ ")
	assert.True(t, ok)
	assert.Equal(t, policy.DOJ, d)

	_, ok = policy.ParseDepartment("FBI")
	assert.False(t, ok)
}

func TestValidRole(t *testing.T) {
	assert.True(t, policy.ValidRole("superadmin"))
	assert.True(t, policy.ValidRole("doj"))
	assert.False(t, policy.ValidRole("root"))
}
