package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/session"
)

// roleGateMiddleware translates session.Decide into HTTP terms: allowed
// requests pass through, unauthenticated ones bounce to the login route,
// wrong-role ones to the caller's dashboard, and requests caught mid
// resolution get 202 so clients retry rather than render a denial.
func roleGateMiddleware(allowed []profile.Role, svc profile.ServiceInterface, conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := getContextSession(ctx)
			if err != nil {
				sess = nil
			}

			var prof *profile.Profile
			if sess != nil {
				if p, pErr := getContextProfile(ctx, svc); pErr == nil {
					prof = &p
				}
			}

			switch session.Decide(sess, prof, false, allowed) {
			case session.Render:
				return next(ctx)
			case session.RedirectLogin:
				return ctx.Redirect(http.StatusFound, conf.Server.LoginPath)
			case session.RedirectHome:
				return ctx.Redirect(http.StatusFound, session.DashboardPath(prof.Role))
			default: // Pending
				return ctx.NoContent(http.StatusAccepted)
			}
		}
	}
}
