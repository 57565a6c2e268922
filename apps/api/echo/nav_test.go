package echoapi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/learnhub/apps/api/echo"
	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/navbar"
	"github.com/trezcool/learnhub/core/profile"
	"github.com/trezcool/learnhub/core/session"
	"github.com/trezcool/learnhub/core/user"
	logsvc "github.com/trezcool/learnhub/services/logger"
	inmemdb "github.com/trezcool/learnhub/storage/database/inmem"
)

func guestView(mobileOpen bool) navbar.View {
	v := navbar.View{
		Brand:         navbar.Link{Label: "LearnHub", Path: "/"},
		DashboardPath: "/",
		Links:         []navbar.Link{{Label: "Courses", Path: "/courses"}},
		GuestActions: []navbar.Action{
			{ID: navbar.ActionLogin, Label: "Login", Path: "/auth/login"},
			{ID: navbar.ActionRegister, Label: "Get Started", Path: "/auth/register"},
		},
		MobileOpen: mobileOpen,
	}
	if mobileOpen {
		v.MobileItems = []navbar.Action{
			{ID: navbar.ActionCourses, Label: "Courses", Path: "/courses"},
			{ID: navbar.ActionLogin, Label: "Login", Path: "/auth/login"},
			{ID: navbar.ActionRegister, Label: "Get Started", Path: "/auth/register"},
		}
	}
	return v
}

func userView(name, dashboard string) navbar.View {
	label := name
	if label == "" {
		label = "My Account"
	}
	return navbar.View{
		Brand:         navbar.Link{Label: "LearnHub", Path: "/"},
		Authenticated: true,
		DashboardPath: dashboard,
		Links:         []navbar.Link{{Label: "Courses", Path: "/courses"}, {Label: "Dashboard", Path: dashboard}},
		Toolbar: []navbar.Action{
			{ID: navbar.ActionNotifications, Label: "Notifications"},
			{ID: navbar.ActionMessages, Label: "Messages", Path: "/messages"},
		},
		Account: &navbar.AccountMenu{
			Label:       label,
			DisplayName: name,
			Items: []navbar.Action{
				{ID: navbar.ActionDashboard, Label: "Dashboard", Path: dashboard},
				{ID: navbar.ActionMessages, Label: "Messages", Path: "/messages"},
				{ID: navbar.ActionSignOut, Label: "Sign Out"},
			},
		},
	}
}

func Test_navApi_view(t *testing.T) {
	app := setup(t, 0)
	admin := app.createUser(t, "Grace Hopper", "grace@learnhub.test", session.RoleAdmin)
	instructor := app.createUser(t, "Ada Lovelace", "ada@learnhub.test", session.RoleInstructor)
	student := app.createUser(t, "", "alan@learnhub.test", session.RoleStudent)

	tests := []httpTest{
		{
			name:     "guest",
			method:   http.MethodGet,
			path:     "/v1/nav",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, guestView(false)),
		},
		{
			name:     "guest mobile menu",
			method:   http.MethodGet,
			path:     "/v1/nav?menu=open",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, guestView(true)),
		},
		{
			name:     "admin",
			method:   http.MethodGet,
			path:     "/v1/nav",
			token:    app.token(t, admin),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, userView("Grace Hopper", "/dashboard/admin")),
		},
		{
			name:     "instructor",
			method:   http.MethodGet,
			path:     "/v1/nav",
			token:    app.token(t, instructor),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, userView("Ada Lovelace", "/dashboard/instructor")),
		},
		{
			name:     "student without a name",
			method:   http.MethodGet,
			path:     "/v1/nav",
			token:    app.token(t, student),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, userView("", "/dashboard/student")),
		},
		{
			name:     "bad token",
			method:   http.MethodGet,
			path:     "/v1/nav",
			token:    "not-a-jwt",
			wantCode: http.StatusUnauthorized,
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_navApi_activate(t *testing.T) {
	app := setup(t, 0)
	ada := app.createUser(t, "Ada Lovelace", "ada@learnhub.test", session.RoleInstructor)
	token := app.token(t, ada)

	tests := []httpTest{
		{
			name:     "dashboard",
			method:   http.MethodPost,
			path:     "/v1/nav/actions/dashboard",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, echoapi.NavActionResponse{
				NavigateTo: "/dashboard/instructor",
				View:       userView("Ada Lovelace", "/dashboard/instructor"),
			}),
		},
		{
			name:     "sign out closes the mobile menu",
			method:   http.MethodPost,
			path:     "/v1/nav/actions/sign_out?menu=open",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, echoapi.NavActionResponse{View: guestView(false)}),
		},
		{
			name:     "guest register",
			method:   http.MethodPost,
			path:     "/v1/nav/actions/register",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, echoapi.NavActionResponse{NavigateTo: "/auth/register", View: guestView(false)}),
		},
		{
			name:     "unknown action",
			method:   http.MethodPost,
			path:     "/v1/nav/actions/launch",
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "not found"}),
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_navApi_profileStoreDown(t *testing.T) {
	conf := newTestConfig(0)
	db := inmemdb.Open()
	usrSvc := user.NewService(inmemdb.NewUserRepository(db))
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:    conf,
		Logger:  logsvc.NewNopLogger(),
		UserSvc: usrSvc,
		Profiles: profile.StoreFunc(func(context.Context, string) (string, error) {
			return "", errors.New("profile store down")
		}),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	t.Cleanup(func() { _ = server.Close() })

	usr, err := usrSvc.AddOrUpdate(context.Background(), "Ada", "ada@learnhub.test", testPassword, session.RoleStudent)
	require.NoError(t, err)
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, conf), conf)
	require.NoError(t, err)

	req, rec := newAuthRequest(http.MethodGet, "/v1/nav", token)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	ok, err := jsonBytesEqual(rec.Body.Bytes(), marshallObj(t, userView("", "/dashboard/student")))
	require.NoError(t, err)
	assert.True(t, ok, rec.Body.String())
}
