package authroles

import (
	"strings"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

// StaticRoleMapper normalises role strings returned by an identity backend.
// OfficerAliases lets deployments map site-specific titles (e.g. "supervisor")
// onto the officer role; anything else passes through lower-cased so the
// workspace router can classify it.
type StaticRoleMapper struct {
	OfficerAliases []string
}

func (m StaticRoleMapper) Map(raw string) domainauth.Role {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, alias := range m.OfficerAliases {
		if a := strings.ToLower(strings.TrimSpace(alias)); a != "" && a == v {
			return domainauth.RoleOfficer
		}
	}
	return domainauth.Role(v)
}
