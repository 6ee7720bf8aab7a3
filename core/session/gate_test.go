package session

import (
	"testing"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
)

func TestDecide(t *testing.T) {
	sess := &Session{Token: "tok", PrincipalID: "p1", Email: "p1@test.cd"}
	student := &profile.Profile{ID: "p1", Role: profile.RoleStudent}
	staff := &profile.Profile{ID: "p1", Role: profile.RoleStaff}
	admin := &profile.Profile{ID: "p1", Role: profile.RoleAdmin}
	rogue := &profile.Profile{ID: "p1", Role: profile.Role("superuser")}

	all := []profile.Role{profile.RoleAdmin, profile.RoleStaff, profile.RoleStudent}
	staffUp := []profile.Role{profile.RoleAdmin, profile.RoleStaff}
	adminOnly := []profile.Role{profile.RoleAdmin}

	tests := []struct {
		name    string
		sess    *Session
		prof    *profile.Profile
		loading bool
		allowed []profile.Role
		want    Decision
	}{
		{name: "loading wins over everything", sess: sess, prof: admin, loading: true, allowed: all, want: Pending},
		{name: "loading with nothing else", loading: true, allowed: all, want: Pending},
		{name: "no session", prof: student, allowed: all, want: RedirectLogin},
		{name: "no profile (half-resolved)", sess: sess, allowed: all, want: RedirectLogin},
		{name: "nothing at all", allowed: all, want: RedirectLogin},
		{name: "student on student route", sess: sess, prof: student, allowed: all, want: Render},
		{name: "student on staff route", sess: sess, prof: student, allowed: staffUp, want: RedirectHome},
		{name: "staff on admin route", sess: sess, prof: staff, allowed: adminOnly, want: RedirectHome},
		{name: "staff on staff route", sess: sess, prof: staff, allowed: staffUp, want: Render},
		{name: "admin anywhere", sess: sess, prof: admin, allowed: adminOnly, want: Render},
		{name: "unknown role never allowed", sess: sess, prof: rogue, allowed: all, want: RedirectHome},
		{name: "empty allowed set", sess: sess, prof: admin, allowed: nil, want: RedirectHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.sess, tt.prof, tt.loading, tt.allowed)
			if got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
			// pure function: same inputs, same output
			if again := Decide(tt.sess, tt.prof, tt.loading, tt.allowed); again != got {
				t.Errorf("Decide() not deterministic: %v then %v", got, again)
			}
		})
	}
}
