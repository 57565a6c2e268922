package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/checkout"
	"github.com/trezcool/learnhub/core/course"
	"github.com/trezcool/learnhub/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errCheckoutNotFound     = echo.NewHTTPError(http.StatusNotFound, "checkout not found")

	// domainErrors maps the sentinel errors of the core packages to their HTTP representation.
	domainErrors = map[error]*echo.HTTPError{
		user.ErrNotFound:             errHttpNotFound,
		user.ErrAuthenticationFailed: errAuthenticationFailed,
		user.ErrAccountDeactivated:   errAccountDeactivated,
		course.ErrNotFound:           echo.NewHTTPError(http.StatusNotFound, "course not found"),
		course.ErrAlreadyEnrolled:    echo.NewHTTPError(http.StatusConflict, "already enrolled in this course"),
		checkout.ErrProcessing:       echo.NewHTTPError(http.StatusConflict, checkout.Notice(checkout.ErrProcessing)),
		checkout.ErrClosed:           echo.NewHTTPError(http.StatusConflict, checkout.Notice(checkout.ErrClosed)),
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if herr, ok := domainErrors[cause]; ok {
			cause = herr
		} else if checkout.IsValidationError(cause) {
			cause = echo.NewHTTPError(http.StatusBadRequest, checkout.Notice(cause))
		}

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var extra []interface{}
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				extra = append(extra, claims.Identity())
			}
			logger.Error(msg, append([]interface{}{errors.Wrap(err, msg)}, extra...)...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
