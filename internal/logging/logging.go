// Package logging builds the process logger shared by the server, the ORM and the CLI.
package logging

import (
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// New creates a [log.Logger] writing to w with timestamps and caller reporting.
// The writer defaults to [os.Stderr]; unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{ReportTimestamp: true, ReportCaller: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Standard adapts l to a *log.Logger from the standard library, for libraries
// that only accept one.
func Standard(l *log.Logger, prefix string) *stdlog.Logger {
	return l.WithPrefix(prefix).StandardLog(log.StandardLogOptions{ForceLevel: log.WarnLevel})
}

// GinMiddleware logs one line per handled request.
func GinMiddleware(l *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
		}
		switch {
		case status >= 500:
			l.Error("request", kv...)
		case status >= 400:
			l.Warn("request", kv...)
		default:
			l.Info("request", kv...)
		}
	}
}
