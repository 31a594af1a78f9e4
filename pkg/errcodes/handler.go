package errcodes

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
	glog "github.com/robinjoseph08/golib/logger"
)

// ErrorTemplate is the view rendered for HTML clients.
const ErrorTemplate = "error"

// ErrorPage is the payload handed to the error template.
type ErrorPage struct {
	Title      string
	StatusCode int
	Code       string
	Message    string
	ErrorID    string
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle is an Echo error handler that uses HTTP errors accordingly, and any
// generic error will be interpreted as an internal server error. Browsers get
// the error template, everything else gets a JSON envelope.
func (h *Handler) Handle(err error, c echo.Context) {
	if errutils.IsIgnorableErr(err) {
		logger.FromEchoContext(c).Err(err).Warn("broken pipe")
		return
	}
	if c.Response().Committed {
		return
	}

	page := h.generatePage(err)

	// Internal server errors
	if page.StatusCode >= http.StatusInternalServerError {
		page.ErrorID = uuid.NewString()
		logger.FromEchoContext(c).Err(err).Error("server error", glog.Data{
			"error_id": page.ErrorID,
			"method":   c.Request().Method,
			"path":     c.Request().URL.Path,
		})
	}

	if wantsHTML(c) && c.Echo().Renderer != nil {
		rerr := c.Render(page.StatusCode, ErrorTemplate, page)
		if rerr == nil {
			return
		}
		logger.FromEchoContext(c).Err(errors.WithStack(rerr)).Error("error handler render error")
	}

	if err := c.JSON(page.StatusCode, payload(page)); err != nil {
		logger.FromEchoContext(c).Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func (h *Handler) generatePage(err error) *ErrorPage {
	code := ""
	msg := ""
	httpCode := http.StatusInternalServerError

	// Echo errors
	var he *echo.HTTPError
	if ok := errors.As(err, &he); ok {
		httpCode = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(he.Code)
		}
		code = strcase.ToSnake(msg)
	}

	// Custom errors
	var e *Error
	if ok := errors.As(err, &e); ok {
		httpCode = e.HTTPCode
		code = e.Code
		msg = e.Message
	}

	// Internal server errors that aren't Echo errors or custom errors
	if httpCode == http.StatusInternalServerError && msg == "" {
		code = "internal_server_error"
		msg = "Internal Server Error"
	}

	return &ErrorPage{
		Title:      http.StatusText(httpCode),
		StatusCode: httpCode,
		Code:       code,
		Message:    msg,
	}
}

func payload(page *ErrorPage) map[string]interface{} {
	body := map[string]interface{}{
		"code":        page.Code,
		"message":     page.Message,
		"status_code": page.StatusCode,
	}
	if page.ErrorID != "" {
		body["error_id"] = page.ErrorID
	}
	return map[string]interface{}{"error": body}
}

func wantsHTML(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	if strings.Contains(accept, echo.MIMEApplicationJSON) {
		return false
	}
	return accept == "" || strings.Contains(accept, echo.MIMETextHTML) || strings.Contains(accept, "*/*")
}
