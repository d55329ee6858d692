// Package web holds the embedded HTML views.
package web

import (
	"embed"
	"html/template"
	"strconv"
	"time"

	"filmshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs are the helpers available to every view.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"year": func(y *int) string {
			if y == nil {
				return ""
			}
			return strconv.Itoa(*y)
		},
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("02.01.2006")
		},
		"name": func(u *models.User) string {
			if u == nil {
				return ""
			}
			return u.Name
		},
	}
}

// Templates parses every embedded view. Each page is registered under its
// file name, e.g. "index.html".
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html"))
}

// Load installs the views on r.
func Load(r *gin.Engine) {
	r.SetHTMLTemplate(Templates())
}
