package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/apps/api/echo"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
)

func TestSessionAPI_login(t *testing.T) {
	app := setup(t)
	app.createProfile(t, "learner@test.cd", "LePassword123", profile.RoleStudent)

	tests := []httpTest{
		{
			name: "valid credentials", method: http.MethodPost, path: "/v1/session/login",
			body:     marchallObj(t, echoapi.LoginRequest{Email: "learner@test.cd", Password: "LePassword123"}),
			wantCode: http.StatusOK,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/session/login",
			body:     marchallObj(t, echoapi.LoginRequest{Email: "learner@test.cd", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "unknown account", method: http.MethodPost, path: "/v1/session/login",
			body:     marchallObj(t, echoapi.LoginRequest{Email: "ghost@test.cd", Password: "LePassword123"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/session/login",
			body:     marchallObj(t, echoapi.LoginRequest{}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
					t.Errorf("login response = %s; want a token", rec.Body.String())
				}
			}
		})
	}
}

func TestSessionAPI_signupForcesStudentRole(t *testing.T) {
	app := setup(t)

	// the payload claims admin; the account must still come out a student
	body := marchallObj(t, profile.NewProfile{
		Email:           "sneaky@test.cd",
		Password:        "LePassword123!",
		PasswordConfirm: "LePassword123!",
		Role:            profile.RoleAdmin,
	})
	req, rec := newRequest(http.MethodPost, "/v1/session/signup", body)
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; want 201; body %s", rec.Code, rec.Body.String())
	}
	prof, err := app.profSvc.GetByEmail("sneaky@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if prof.Role != profile.RoleStudent {
		t.Errorf("Role = %v; want student", prof.Role)
	}
}

func TestSessionAPI_whoami(t *testing.T) {
	app := setup(t)
	prof := app.createProfile(t, "who@test.cd", "LePassword123", profile.RoleStaff)
	token := app.getToken(t, prof)

	req, rec := newRequest(http.MethodGet, "/v1/session")
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/v1/session", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want 200; body %s", rec.Code, rec.Body.String())
	}

	var state echoapi.SessionStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("unmarshalling state failed: %v", err)
	}
	if state.Loading {
		t.Error("Loading = true; want false")
	}
	if state.User == nil || state.User.PrincipalID != prof.ID {
		t.Errorf("User = %+v; want principal %q", state.User, prof.ID)
	}
	if state.Profile == nil || state.Profile.Role != profile.RoleStaff {
		t.Errorf("Profile = %+v; want resolved staff profile", state.Profile)
	}
}

func TestSessionAPI_whoamiSynthesizesProfile(t *testing.T) {
	app := setup(t)

	// a principal known to the identity provider but absent from the profile
	// table: resolution must synthesize a default student record
	ghost := profile.Profile{ID: "pid-ghost", Email: "jane.doe@test.cd"}
	token := app.getToken(t, ghost)

	req, rec := newAuthRequest(http.MethodGet, "/v1/session", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want 200; body %s", rec.Code, rec.Body.String())
	}

	var state echoapi.SessionStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("unmarshalling state failed: %v", err)
	}
	if state.Profile == nil {
		t.Fatal("Profile = nil; want synthesized record")
	}
	if state.Profile.Role != profile.RoleStudent || state.Profile.DisplayName != "jane.doe" {
		t.Errorf("Profile = %+v; want default student jane.doe", state.Profile)
	}
}

// pollState hits the state endpoint until done reports the manager settled.
func (app *testApp) pollState(t *testing.T, done func(echoapi.SessionStateResponse) bool) echoapi.SessionStateResponse {
	t.Helper()

	deadline := time.After(2 * time.Second)
	var state echoapi.SessionStateResponse
	for {
		req, rec := newRequest(http.MethodGet, "/v1/session/state")
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("state code = %d; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
			t.Fatalf("unmarshalling state failed: %v", err)
		}
		if done(state) {
			return state
		}
		select {
		case <-deadline:
			t.Fatalf("state never settled; last %+v", state)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSessionAPI_state(t *testing.T) {
	app := setup(t)
	prof := app.createProfile(t, "shell@test.cd", "LePassword123", profile.RoleStaff)

	// the startup session check settles with nobody signed in
	state := app.pollState(t, func(st echoapi.SessionStateResponse) bool { return !st.Loading })
	if state.User != nil || state.Profile != nil {
		t.Fatalf("settled state = %+v; want empty", state)
	}

	// signing in over HTTP feeds the manager through the auth event stream
	body := marchallObj(t, echoapi.LoginRequest{Email: prof.Email, Password: "LePassword123"})
	req, rec := newRequest(http.MethodPost, "/v1/session/login", body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login code = %d; body %s", rec.Code, rec.Body.String())
	}

	state = app.pollState(t, func(st echoapi.SessionStateResponse) bool { return st.Profile != nil })
	if state.User == nil || state.User.PrincipalID != prof.ID {
		t.Errorf("User = %+v; want principal %q", state.User, prof.ID)
	}
	if state.Profile.Role != profile.RoleStaff {
		t.Errorf("Profile = %+v; want resolved staff record", state.Profile)
	}

	// a shell sitting on the login page is told to move to its dashboard
	req, rec = newRequest(http.MethodGet, "/v1/session/state?at=/login")
	app.server.ServeHTTP(rec, req)
	state = echoapi.SessionStateResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("unmarshalling state failed: %v", err)
	}
	if state.NavigateTo != "/staff" {
		t.Errorf("NavigateTo = %q from login page; want /staff", state.NavigateTo)
	}

	// deeper in the application it is left where it is
	req, rec = newRequest(http.MethodGet, "/v1/session/state?at=/staff/courses")
	app.server.ServeHTTP(rec, req)
	state = echoapi.SessionStateResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("unmarshalling state failed: %v", err)
	}
	if state.NavigateTo != "" {
		t.Errorf("NavigateTo = %q mid-application; want none", state.NavigateTo)
	}
}

func TestSessionAPI_passwordReset(t *testing.T) {
	app := setup(t)
	app.createProfile(t, "forgetful@test.cd", "LePassword123", profile.RoleStudent)

	wantBody := marchallObj(t, echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
	tests := []httpTest{
		{
			name: "known account", method: http.MethodPost, path: "/v1/session/password-reset",
			body:     marchallObj(t, echoapi.PasswordResetRequest{Email: "forgetful@test.cd"}),
			wantCode: http.StatusOK, wantData: wantBody,
		},
		{
			// account existence must not leak
			name: "unknown account", method: http.MethodPost, path: "/v1/session/password-reset",
			body:     marchallObj(t, echoapi.PasswordResetRequest{Email: "ghost@test.cd"}),
			wantCode: http.StatusOK, wantData: wantBody,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestSessionAPI_tokenRefresh(t *testing.T) {
	app := setup(t)
	prof := app.createProfile(t, "fresh@test.cd", "LePassword123", profile.RoleStudent)
	token := app.getToken(t, prof)

	req, rec := newAuthRequest(http.MethodPost, "/v1/session/token-refresh", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want 200; body %s", rec.Code, rec.Body.String())
	}
	var resp echoapi.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Errorf("refresh response = %s; want a token", rec.Body.String())
	}
}

func TestProfileAPI_adminGate(t *testing.T) {
	app := setup(t)
	student := app.createProfile(t, "student@test.cd", "LePassword123", profile.RoleStudent)
	staff := app.createProfile(t, "staff@test.cd", "LePassword123", profile.RoleStaff)
	admin := app.createProfile(t, "admin@test.cd", "LePassword123", profile.RoleAdmin)

	tests := []struct {
		name         string
		token        string
		wantCode     int
		wantLocation string
	}{
		{name: "admin passes", token: app.getToken(t, admin), wantCode: http.StatusOK},
		{name: "staff sent to their dashboard", token: app.getToken(t, staff), wantCode: http.StatusFound, wantLocation: "/staff"},
		{name: "student sent to their dashboard", token: app.getToken(t, student), wantCode: http.StatusFound, wantLocation: "/learn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/profiles", tt.token)
			app.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d; want %d; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q; want %q", loc, tt.wantLocation)
			}
		})
	}
}

func TestProfileAPI_setRole(t *testing.T) {
	app := setup(t)
	admin := app.createProfile(t, "admin@test.cd", "LePassword123", profile.RoleAdmin)
	student := app.createProfile(t, "student@test.cd", "LePassword123", profile.RoleStudent)
	token := app.getToken(t, admin)

	body := marchallObj(t, echoapi.SetRoleRequest{Role: profile.RoleStaff})
	req, rec := newAuthRequest(http.MethodPut, "/v1/profiles/"+student.ID+"/role", token, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want 200; body %s", rec.Code, rec.Body.String())
	}

	stored, _ := app.profSvc.GetByID(student.ID)
	if stored.Role != profile.RoleStaff {
		t.Errorf("Role = %v; want staff", stored.Role)
	}

	body = marchallObj(t, echoapi.SetRoleRequest{Role: profile.Role("superuser")})
	req, rec = newAuthRequest(http.MethodPut, "/v1/profiles/"+student.ID+"/role", token, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d for unknown role; want 400", rec.Code)
	}
}
