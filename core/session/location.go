package session

import (
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
)

// Location abstracts the front end's current route so the redirect policy can
// be tested without a UI.
type Location interface {
	Current() string
	Navigate(path string)
}

// LocationPolicy observes Manager state and performs the one post-resolution
// navigation side effect: users sitting on the landing or login page are sent
// to the dashboard matching their role. Resolution itself never navigates.
type LocationPolicy struct {
	loc       Location
	loginPath string
	homePath  string
}

func NewLocationPolicy(loc Location, conf *core.Config) *LocationPolicy {
	return &LocationPolicy{
		loc:       loc,
		loginPath: conf.Server.LoginPath,
		homePath:  conf.Server.HomePath,
	}
}

// DashboardPath maps a role to its application area.
func DashboardPath(role profile.Role) string {
	switch role {
	case profile.RoleAdmin:
		return "/admin"
	case profile.RoleStaff:
		return "/staff"
	default:
		return "/learn"
	}
}

// Observe applies the redirect policy to one state change. Users already
// deeper in the application are never yanked away from their current task.
func (p *LocationPolicy) Observe(st State) {
	if st.Loading || st.User == nil || st.Profile == nil {
		return
	}
	cur := p.loc.Current()
	if cur != p.loginPath && cur != p.homePath {
		return
	}
	p.loc.Navigate(DashboardPath(st.Profile.Role))
}

// Watch drains a state subscription, applying Observe to every change.
func (p *LocationPolicy) Watch(states <-chan State) {
	for st := range states {
		p.Observe(st)
	}
}
