package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/session"
	authsvc "github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/services/auth"
)

type sessionApi struct {
	backend    *authsvc.LocalBackend
	profSvc    profile.ServiceInterface
	sessionMgr *session.Manager
	conf       *core.Config
	validate   *validator.Validate
	translator ut.Translator
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := sessionApi{
		backend:    deps.AuthBackend,
		profSvc:    deps.ProfileSvc,
		sessionMgr: deps.SessionMgr,
		conf:       deps.Conf,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	sg := g.Group("/session")

	// un-authed endpoints
	sg.POST("/login", api.login)
	sg.POST("/signup", api.signup)
	sg.POST("/password-reset", api.resetPassword)
	sg.POST("/password-reset-confirm", api.confirmPasswordReset)
	sg.GET("/federated", api.federatedURL)
	sg.GET("/federated/callback", api.federatedCallback)
	if api.sessionMgr != nil {
		sg.GET("/state", api.state)
	}

	// authed endpoints
	ag := sg.Group("", jwt)
	ag.GET("", api.whoami)
	ag.POST("/logout", api.logout)
	ag.POST("/token-refresh", api.refreshToken)
}

// Handlers

func (api *sessionApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.backend.SignIn(data.Email, data.Password)
	if err != nil {
		switch errors.Cause(err) {
		case session.ErrInvalidCredentials:
			return core.NewValidationError(errors.New("invalid credentials"))
		case authsvc.ErrAccountDeactivated:
			return errAccountDeactivated
		}
		return errors.Wrap(err, "authenticating")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: sess.Token})
}

func (api *sessionApi) signup(ctx echo.Context) error {
	var data profile.NewProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProfile")
	}
	// self-registration is always a student; promotions happen elsewhere
	data.Role = profile.RoleStudent
	if err := data.Validate(api.validate, api.profSvc); err != nil {
		return err
	}

	sess, err := api.backend.SignUp(data)
	if err != nil {
		return errors.Wrap(err, "signing up")
	}
	if sess == nil {
		return ctx.JSON(http.StatusCreated, SuccessResponse{Success: "Account created. Check your inbox to confirm your email address."})
	}
	return ctx.JSON(http.StatusCreated, LoginResponse{Token: sess.Token})
}

// whoami reports the {user, profile, loading} triple for the presented
// credential. Loading is always false here: by response time the profile is
// either resolved or known to be unavailable.
func (api *sessionApi) whoami(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	state := session.State{User: sess}
	if prof, pErr := getContextProfile(ctx, api.profSvc); pErr == nil {
		state.Profile = &prof
	}
	return ctx.JSON(http.StatusOK, SessionStateResponse{
		User:    state.User,
		Profile: state.Profile,
		Loading: state.Loading,
	})
}

// state serves the Manager's live {user, profile, loading} triple to the
// embedded shell. The shell reports where it currently sits via the "at"
// query param; the redirect policy then decides whether it should move on.
func (api *sessionApi) state(ctx echo.Context) error {
	st := api.sessionMgr.State()
	resp := SessionStateResponse{
		User:    st.User,
		Profile: st.Profile,
		Loading: st.Loading,
	}
	if at := ctx.QueryParam("at"); at != "" {
		loc := &reportedLocation{current: at}
		session.NewLocationPolicy(loc, api.conf).Observe(st)
		resp.NavigateTo = loc.target
	}
	return ctx.JSON(http.StatusOK, resp)
}

// reportedLocation adapts a client-reported path to the redirect policy's
// Location contract; Navigate records the target instead of moving anything.
type reportedLocation struct {
	current string
	target  string
}

func (l *reportedLocation) Current() string      { return l.current }
func (l *reportedLocation) Navigate(path string) { l.target = path }

func (api *sessionApi) logout(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	if err = api.backend.SignOut(sess); err != nil {
		return errors.Wrap(err, "signing out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.backend.RequestPasswordReset(data.Email); !(err == nil || errors.Cause(err) == profile.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *sessionApi) confirmPasswordReset(ctx echo.Context) error {
	var data profile.ResetProfilePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetProfilePassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.profSvc.ResetPassword(data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *sessionApi) refreshToken(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	newSess, err := api.backend.Refresh(sess)
	if err != nil {
		switch errors.Cause(err) {
		case authsvc.ErrRefreshExpired:
			return errRefreshExpired
		case authsvc.ErrAccountDeactivated:
			return errAccountDeactivated
		}
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: newSess.Token})
}

func (api *sessionApi) federatedURL(ctx echo.Context) error {
	url, err := api.backend.FederatedSignInURL()
	if err != nil {
		if errors.Cause(err) == session.ErrNoProvider {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting federated sign-in URL")
	}
	return ctx.JSON(http.StatusOK, FederatedURLResponse{URL: url})
}

func (api *sessionApi) federatedCallback(ctx echo.Context) error {
	token := ctx.QueryParam("token")
	if token == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "token", Error: "this field is required"})
	}

	sess, err := api.backend.FederatedCallback(token)
	if err != nil {
		return core.NewValidationError(errors.New("invalid callback token"))
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: sess.Token})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	SessionStateResponse struct {
		User       *session.Session `json:"user"`
		Profile    *profile.Profile `json:"profile"`
		Loading    bool             `json:"loading"`
		NavigateTo string           `json:"navigate_to,omitempty"`
	}

	FederatedURLResponse struct {
		URL string `json:"url"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
