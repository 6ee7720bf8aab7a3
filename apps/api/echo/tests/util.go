package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/apps/api/echo"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/progress"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/session"
	authsvc "github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/services/auth"
	emailsvc "github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/services/email"
	dummydb "github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testApp struct {
	server     echoapi.Server
	db         *dummydb.DB
	profSvc    *profile.ServiceMock
	sessionMgr *session.Manager
	conf       *core.Config
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		TestMode:         true,
		AppName:          "Learnwise",
		SecretKey:        []byte("secret"),
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Address: "noreply@localhost"},
		WorkDir:          core.Getwd(),
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			LoginPath:                 "/login",
			HomePath:                  "/",
		},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	profSvc := profile.NewServiceMock(dummydb.NewProfileRepository(db), mailSvc, conf)
	progSvc := progress.NewService(dummydb.NewProgressRepository(db), nopLogger{})
	backend := authsvc.NewLocalBackend(profSvc, nopLogger{}, conf)

	sessionMgr := session.NewManager(backend, profSvc, nopLogger{})
	sessionMgr.Start()
	t.Cleanup(sessionMgr.Stop)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	profile.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, nopLogger{})

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      nopLogger{},
		SessionMgr:  sessionMgr,
		AuthBackend: backend,
		ProfileSvc:  profSvc,
		CourseRepo:  dummydb.NewCourseRepository(db),
		ProgressSvc: progSvc,
		Validate:    validate,
		Translator:  translator,
	})
	return &testApp{server: server, db: db, profSvc: profSvc, sessionMgr: sessionMgr, conf: conf}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func (app *testApp) createProfile(t *testing.T, email, pwd string, role profile.Role) profile.Profile {
	t.Helper()
	prof, err := app.profSvc.Create(profile.NewProfile{Email: email, Password: pwd, Role: role})
	if err != nil {
		t.Fatalf("creating %s profile failed: %v", role, err)
	}
	return prof
}

func (app *testApp) getToken(t *testing.T, prof profile.Profile) string {
	t.Helper()
	token, err := authsvc.GenerateToken(authsvc.GetProfileClaims(prof, app.conf), app.conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
