package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/learnhub/core/checkout"
	"github.com/trezcool/learnhub/core/course"
	"github.com/trezcool/learnhub/core/user"
	"github.com/trezcool/learnhub/services/metrics"
)

type courseApi struct {
	svc       *course.Service
	userSvc   *user.Service
	checkouts *checkoutRegistry
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps, checkouts *checkoutRegistry) {
	api := courseApi{
		svc:       deps.CourseSvc,
		userSvc:   deps.UserSvc,
		checkouts: checkouts,
	}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.POST("/:id/checkout", api.openCheckout, jwt)

	g.GET("/enrollments", api.enrollments, jwt)

	kg := g.Group("/checkouts/:id", jwt, api.checkoutMiddleware)
	kg.GET("", api.retrieveCheckout)
	kg.PATCH("", api.editCheckout)
	kg.POST("/submit", api.submitCheckout)
	kg.DELETE("", api.closeCheckout)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) enrollments(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}
	enrollments, err := api.svc.Enrollments(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *courseApi) openCheckout(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return err
	}
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}

	enrolled, err := api.svc.IsEnrolled(ctx.Request().Context(), usr.ID, c.ID)
	if err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	if enrolled {
		return course.ErrAlreadyEnrolled
	}

	cs := api.checkouts.open(usr, c)
	return ctx.JSON(http.StatusCreated, cs.response())
}

func (api *courseApi) retrieveCheckout(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, contextCheckout(ctx).response())
}

// editCheckout applies the field edits in the order of the form: number, expiry, CVV, cardholder name.
func (api *courseApi) editCheckout(ctx echo.Context) error {
	cs := contextCheckout(ctx)
	var data CheckoutEditRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckoutEditRequest")
	}

	edits := []struct {
		value *string
		set   func(string) (checkout.Form, error)
	}{
		{data.CardNumber, cs.dialog.SetCardNumber},
		{data.ExpiryDate, cs.dialog.SetExpiryDate},
		{data.CVV, cs.dialog.SetCVV},
		{data.CardholderName, cs.dialog.SetCardholderName},
	}
	for _, e := range edits {
		if e.value == nil {
			continue
		}
		if _, err := e.set(*e.value); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, cs.response())
}

func (api *courseApi) submitCheckout(ctx echo.Context) error {
	cs := contextCheckout(ctx)
	if err := cs.dialog.Submit(); err != nil {
		switch err {
		case checkout.ErrIncompleteForm:
			metrics.CheckoutTotal.WithLabelValues(metrics.OutcomeInvalidForm).Inc()
		case checkout.ErrInvalidCardNumber:
			metrics.CheckoutTotal.WithLabelValues(metrics.OutcomeInvalidCard).Inc()
		}
		return err
	}
	metrics.CheckoutTotal.WithLabelValues(metrics.OutcomeProcessing).Inc()
	return ctx.JSON(http.StatusAccepted, cs.response())
}

// closeCheckout disposes of the checkout, cancelling a payment still processing.
func (api *courseApi) closeCheckout(ctx echo.Context) error {
	cs := contextCheckout(ctx)
	api.checkouts.remove(cs.id, cs.userID)
	return ctx.NoContent(http.StatusNoContent)
}

// checkoutMiddleware loads the checkout of the caller into the context.
func (api *courseApi) checkoutMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		cs, ok := api.checkouts.get(ctx.Param("id"), claims.Subject)
		if !ok {
			return errCheckoutNotFound
		}
		ctx.Set("object", cs)
		return next(ctx)
	}
}

func contextCheckout(ctx echo.Context) *checkoutSession {
	return ctx.Get("object").(*checkoutSession)
}

// CheckoutEditRequest holds the raw keystrokes of the fields being edited. Absent fields are left untouched.
type CheckoutEditRequest struct {
	CardNumber     *string `json:"card_number"`
	ExpiryDate     *string `json:"expiry_date"`
	CVV            *string `json:"cvv"`
	CardholderName *string `json:"cardholder_name"`
}
