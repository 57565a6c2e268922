package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/session"
	"github.com/trezcool/learnhub/core/user"
)

type authApi struct {
	conf      *core.Config
	logger    core.Logger
	svc       *user.Service
	validate  *validator.Validate
	checkouts *checkoutRegistry
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps, checkouts *checkoutRegistry) {
	api := authApi{
		conf:      deps.Conf,
		logger:    deps.Logger,
		svc:       deps.UserSvc,
		validate:  deps.Validate,
		checkouts: checkouts,
	}

	ag := g.Group("/auth")

	// TODO: rate limit `/login`
	ag.POST("/login", api.login)
	ag.POST("/register", api.register)
	ag.POST("/logout", api.logout, jwt)
	ag.GET("/me", api.me, jwt)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	return api.tokenResponse(ctx, http.StatusOK, usr)
}

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	// self registered accounts are students
	data.Role = session.RoleStudent.String()
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return api.tokenResponse(ctx, http.StatusCreated, usr)
}

// logout signs the caller's session out: their pending checkouts are cancelled.
// Tokens are stateless: the client drops its own.
func (api *authApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	sess := newSession(claims.Identity(), api.checkouts, api.logger)
	sess.SignOut()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *authApi) tokenResponse(ctx echo.Context, code int, usr user.User) error {
	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(code, LoginResponse{Token: token, User: usr})
}

// newSession returns the session of one request. Signing it out cancels the user's checkouts.
func newSession(id session.Identity, checkouts *checkoutRegistry, logger core.Logger) *session.Context {
	sess := session.NewContext(id)
	sess.OnSignOut(func(prev session.Identity) {
		n := checkouts.closeUser(prev.UserID)
		logger.Info("user signed out", prev, map[string]interface{}{"cancelled_checkouts": n})
	})
	return sess
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
