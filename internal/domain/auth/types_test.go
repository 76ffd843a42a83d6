package auth

import (
	"context"
	"testing"
	"time"
)

func TestRole_Kind(t *testing.T) {
	cases := map[Role]RoleKind{
		"officer":    RoleKindOfficer,
		"Admin":      RoleKindAdmin,
		" cleaner ":  RoleKindCleaner,
		"user":       RoleKindUnknown,
		"supervisor": RoleKindUnknown,
		"":           RoleKindUnknown,
	}
	for role, want := range cases {
		if got := role.Kind(); got != want {
			t.Fatalf("Role(%q).Kind() = %v, want %v", role, got, want)
		}
	}
}

func TestWorkspaceForRole_TwoWaySplit(t *testing.T) {
	for _, r := range []Role{RoleOfficer, RoleAdmin} {
		ws := WorkspaceForRole(r)
		if ws.Name != WorkspaceOfficer || ws.Home != "/dashboard/officer" {
			t.Fatalf("role %q: unexpected workspace %+v", r, ws)
		}
		if ws.Theme.Name != "blue" {
			t.Fatalf("role %q: expected blue theme", r)
		}
	}
	for _, r := range []Role{RoleCleaner, RoleUser, "janitor", ""} {
		ws := WorkspaceForRole(r)
		if ws.Name != WorkspaceCleaner || ws.Home != "/dashboard/cleaner" {
			t.Fatalf("role %q: unexpected workspace %+v", r, ws)
		}
	}
}

func TestWorkspaceFor_NavigationStaysInsideWorkspace(t *testing.T) {
	for _, kind := range []RoleKind{RoleKindOfficer, RoleKindCleaner} {
		ws := WorkspaceFor(kind)
		if len(ws.Navigation) == 0 {
			t.Fatalf("%v: empty navigation", kind)
		}
		if ws.Navigation[0].Href != ws.Home {
			t.Fatalf("%v: first nav item should be home, got %q", kind, ws.Navigation[0].Href)
		}
	}
}

func TestUserRecord_ProfileOmitsPassword(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := UserRecord{ID: "1", Username: "admin", Password: "admin123", Role: RoleAdmin, Status: StatusActive, CreatedAt: now}
	p := rec.Profile()
	if p.ID != "1" || p.Username != "admin" || p.Role != RoleAdmin || !p.CreatedAt.Equal(now) {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestCheckStatus(t *testing.T) {
	if err := CheckStatus(UserRecord{Status: StatusActive}); err != nil {
		t.Fatalf("active: unexpected error %v", err)
	}
	if err := CheckStatus(UserRecord{Status: StatusInactive}); err != ErrAccountDisabled {
		t.Fatalf("inactive: expected ErrAccountDisabled, got %v", err)
	}
}

func TestTokenPair_WithDefaults(t *testing.T) {
	p := TokenPair{AccessToken: "a", RefreshToken: "r"}.WithDefaults()
	if p.TokenType != "Bearer" || p.ExpiresIn != 3600 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	kept := TokenPair{TokenType: "MAC", ExpiresIn: 60}.WithDefaults()
	if kept.TokenType != "MAC" || kept.ExpiresIn != 60 {
		t.Fatalf("explicit values should be kept: %+v", kept)
	}
}

func TestSession_Valid(t *testing.T) {
	if (Session{Token: "t"}).Valid() {
		t.Fatalf("session without profile should be invalid")
	}
	if !(Session{Token: "t", User: UserProfile{ID: "1"}}).Valid() {
		t.Fatalf("expected valid session")
	}
}

func TestSessionIDContext(t *testing.T) {
	if _, ok := SessionIDFromContext(context.Background()); ok {
		t.Fatalf("empty context should carry no id")
	}
	ctx := WithSessionID(context.Background(), "abc")
	if id, ok := SessionIDFromContext(ctx); !ok || id != "abc" {
		t.Fatalf("got %q %v", id, ok)
	}
}
