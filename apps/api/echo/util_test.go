package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/learnhub/apps/api/echo"
	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/course"
	"github.com/trezcool/learnhub/core/session"
	"github.com/trezcool/learnhub/core/user"
	appfs "github.com/trezcool/learnhub/fs"
	emailsvc "github.com/trezcool/learnhub/services/email"
	logsvc "github.com/trezcool/learnhub/services/logger"
	inmemdb "github.com/trezcool/learnhub/storage/database/inmem"
)

const testPassword = "Gr8-Analytic$"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server    *echoapi.Server
	conf      *core.Config
	userSvc   *user.Service
	courseSvc *course.Service
	mailSvc   *emailsvc.ConsoleServiceMock
}

func newTestConfig(latency time.Duration) *core.Config {
	return &core.Config{
		TestMode:         true,
		Env:              "TEST",
		AppName:          "LearnHub",
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://learnhub.test",
		DefaultFromEmail: mail.Address{Name: "LearnHub", Address: "noreply@learnhub.test"},
		Server:           core.ServerConfig{JWTExpirationDelta: time.Hour},
		Checkout:         core.CheckoutConfig{Latency: latency},
	}
}

func setup(t *testing.T, latency time.Duration) *testApp {
	t.Helper()
	conf := newTestConfig(latency)
	logger := logsvc.NewNopLogger()

	db := inmemdb.Open()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	usrSvc := user.NewService(inmemdb.NewUserRepository(db))
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db), mailSvc)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(appfs.FS, conf, logger)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        usrSvc,
		CourseSvc:      courseSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	t.Cleanup(func() { _ = server.Close() })

	return &testApp{server: server, conf: conf, userSvc: usrSvc, courseSvc: courseSvc, mailSvc: mailSvc}
}

func (app *testApp) createUser(t *testing.T, name, email string, role session.Role) user.User {
	t.Helper()
	usr, err := app.userSvc.AddOrUpdate(context.Background(), name, email, testPassword, role)
	require.NoError(t, err)
	return usr
}

func (app *testApp) createCourse(t *testing.T, title string, price float64) course.Course {
	t.Helper()
	c, err := app.courseSvc.Create(context.Background(), course.NewCourse{Title: title, Price: price})
	require.NoError(t, err)
	return c
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, app.conf), app.conf)
	require.NoError(t, err)
	return token
}

func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.server.ServeHTTP(rec, req)
	return rec
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

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarshall(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt.method, tt.path, tt.token, tt.body))
		})
	}
}
