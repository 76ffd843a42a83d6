package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	m := StaticRoleMapper{OfficerAliases: []string{"Supervisor"}}

	assert.Equal(t, domainauth.RoleOfficer, m.Map("supervisor"))
	assert.Equal(t, domainauth.RoleAdmin, m.Map(" ADMIN "))
	assert.Equal(t, domainauth.RoleCleaner, m.Map("cleaner"))
	assert.Equal(t, domainauth.Role("guest"), m.Map("Guest"))
	assert.Equal(t, domainauth.RoleKindUnknown, m.Map("guest").Kind())
}
