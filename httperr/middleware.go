package httperr

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/t0bias84/hagelskott/observe"
)

// Modes accepted by Config.Mode.
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// Config configures Middleware.
type Config struct {
	// Mode selects the response style. Anything other than ModeProduction
	// returns raw errors with their stack.
	// Default: ModeProduction
	Mode string

	Logger observe.Logger
}

// Body is the JSON error response.
type Body struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Middleware converts the last error recorded with c.Error, or a panic in a
// later handler, into a JSON response. Handlers that already wrote a
// response are left alone.
func Middleware(cfg Config) gin.HandlerFunc {
	if cfg.Mode == "" {
		cfg.Mode = ModeProduction
	}
	logger := observe.OrNop(cfg.Logger).With(observe.F("component", "httperr"))
	production := cfg.Mode == ModeProduction

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", r)
				}
				_ = c.Error(WithStack(err))
				c.Abort()
				respond(c, logger, production)
			}
		}()

		c.Next()
		respond(c, logger, production)
	}
}

func respond(c *gin.Context, logger observe.Logger, production bool) {
	last := c.Errors.Last()
	if last == nil {
		return
	}
	err := last.Err
	ctx := c.Request.Context()

	if c.Writer.Written() {
		logger.Warn(ctx, "error after response was written", observe.Err(err))
		return
	}

	if !production {
		status := RawStatus(err)
		logger.Error(ctx, "request failed",
			observe.F("path", c.Request.URL.Path),
			observe.F("status", status),
			observe.Err(err),
		)
		c.AbortWithStatusJSON(status, Body{
			Status:  Response{StatusCode: status}.Status(),
			Message: err.Error(),
			Error:   fmt.Sprintf("%+v", err),
			Stack:   Stack(err),
		})
		return
	}

	resp := Normalize(err, MatchLanguage(c.GetHeader("Accept-Language")))
	fields := []observe.Field{
		observe.F("path", c.Request.URL.Path),
		observe.F("status", resp.StatusCode),
		observe.Err(err),
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", fields...)
	} else {
		logger.Info(ctx, "request rejected", fields...)
	}
	c.AbortWithStatusJSON(resp.StatusCode, Body{Status: resp.Status(), Message: resp.Message})
}

// Abort records err on c and stops the handler chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
