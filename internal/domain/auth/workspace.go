package auth

// WorkspaceName identifies one of the role-specific dashboard areas.
type WorkspaceName string

const (
	WorkspaceOfficer WorkspaceName = "officer"
	WorkspaceCleaner WorkspaceName = "cleaner"
)

// NavItem is one entry of a workspace navigation menu.
type NavItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Theme is the colour palette of a workspace.
type Theme struct {
	Name    string `json:"name"`
	Primary string `json:"primary"`
	Accent  string `json:"accent"`
}

// Workspace is what a role sees after login.
type Workspace struct {
	Name       WorkspaceName `json:"name"`
	Home       string        `json:"home"`
	Navigation []NavItem     `json:"navigation"`
	Theme      Theme         `json:"theme"`
}

func officerWorkspace() Workspace {
	return Workspace{
		Name: WorkspaceOfficer,
		Home: "/dashboard/officer",
		Navigation: []NavItem{
			{Key: "dashboard", Label: "Dashboard", Href: "/dashboard/officer"},
			{Key: "bins", Label: "Bin Management", Href: "/dashboard/officer/bins"},
			{Key: "routes", Label: "Route Optimization", Href: "/dashboard/officer/routes"},
			{Key: "analytics", Label: "Analytics", Href: "/dashboard/officer/analytics"},
			{Key: "reports", Label: "Reports", Href: "/dashboard/officer/reports"},
			{Key: "maintenance", Label: "Maintenance", Href: "/dashboard/officer/maintenance"},
			{Key: "alerts", Label: "Alerts", Href: "/dashboard/officer/alerts"},
		},
		Theme: Theme{Name: "blue", Primary: "#2563eb", Accent: "#1d4ed8"},
	}
}

func cleanerWorkspace() Workspace {
	return Workspace{
		Name: WorkspaceCleaner,
		Home: "/dashboard/cleaner",
		Navigation: []NavItem{
			{Key: "dashboard", Label: "Dashboard", Href: "/dashboard/cleaner"},
			{Key: "tasks", Label: "My Tasks", Href: "/dashboard/cleaner/tasks"},
			{Key: "locations", Label: "Locations", Href: "/dashboard/cleaner/locations"},
			{Key: "history", Label: "History", Href: "/dashboard/cleaner/history"},
			{Key: "schedule", Label: "Schedule", Href: "/dashboard/cleaner/schedule"},
			{Key: "profile", Label: "Profile", Href: "/dashboard/cleaner/profile"},
		},
		Theme: Theme{Name: "green", Primary: "#16a34a", Accent: "#15803d"},
	}
}

// WorkspaceFor maps a role kind to its workspace. It is total: officer and
// admin share the officer workspace, every other kind (Unknown included)
// falls through to the cleaner workspace.
func WorkspaceFor(kind RoleKind) Workspace {
	switch kind {
	case RoleKindOfficer, RoleKindAdmin:
		return officerWorkspace()
	case RoleKindCleaner, RoleKindUnknown:
		return cleanerWorkspace()
	default:
		return cleanerWorkspace()
	}
}

// WorkspaceForRole is WorkspaceFor over a raw role string.
func WorkspaceForRole(role Role) Workspace { return WorkspaceFor(role.Kind()) }

// ParseWorkspaceName returns the workspace named by a path segment.
func ParseWorkspaceName(s string) (WorkspaceName, bool) {
	switch WorkspaceName(s) {
	case WorkspaceOfficer:
		return WorkspaceOfficer, true
	case WorkspaceCleaner:
		return WorkspaceCleaner, true
	default:
		return "", false
	}
}
