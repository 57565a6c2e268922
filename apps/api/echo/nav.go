package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/navbar"
	"github.com/trezcool/learnhub/core/profile"
)

type navApi struct {
	profiles  profile.Store
	logger    core.Logger
	checkouts *checkoutRegistry
}

func registerNavAPI(g *echo.Group, optionalJWT echo.MiddlewareFunc, deps ServerDeps, checkouts *checkoutRegistry) {
	api := navApi{
		profiles:  deps.Profiles,
		logger:    deps.Logger,
		checkouts: checkouts,
	}

	ng := g.Group("/nav", optionalJWT)
	ng.GET("", api.view)
	ng.POST("/actions/:action", api.activate)
}

// mount builds the navigation bar of the caller and waits for its display name lookup.
// The caller must Close the returned Bar.
func (api *navApi) mount(ctx echo.Context, nav navbar.Navigator) *navbar.Bar {
	sess := newSession(getContextIdentity(ctx), api.checkouts, api.logger)
	bar := navbar.New(sess, api.profiles, nav, api.logger)
	bar.Start(ctx.Request().Context())
	bar.Wait()
	if ctx.QueryParam("menu") == "open" {
		bar.ToggleMobileMenu()
	}
	return bar
}

func (api *navApi) view(ctx echo.Context) error {
	bar := api.mount(ctx, navbar.NavigatorFunc(func(string) {}))
	defer bar.Close()
	return ctx.JSON(http.StatusOK, bar.View())
}

func (api *navApi) activate(ctx echo.Context) error {
	var target string
	bar := api.mount(ctx, navbar.NavigatorFunc(func(path string) { target = path }))
	defer bar.Close()

	if !bar.Activate(ctx.Param("action")) {
		return errHttpNotFound
	}
	bar.Wait()
	return ctx.JSON(http.StatusOK, NavActionResponse{NavigateTo: target, View: bar.View()})
}

type NavActionResponse struct {
	NavigateTo string      `json:"navigate_to,omitempty"`
	View       navbar.View `json:"view"`
}
