package web

import (
	"bytes"
	"testing"
	"time"

	"filmshelf/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesParse(t *testing.T) {
	tmpl := Templates()
	for _, name := range []string{"index.html", "detail.html", "board.html", "users.html", "login.html", "password.html", "404.html"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestFuncs(t *testing.T) {
	funcs := Funcs()
	year := funcs["year"].(func(*int) string)
	date := funcs["date"].(func(*time.Time) string)
	name := funcs["name"].(func(*models.User) string)

	y := 1979
	assert.Equal(t, "1979", year(&y))
	assert.Empty(t, year(nil))

	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "01.03.2024", date(&d))
	assert.Empty(t, date(nil))

	assert.Equal(t, "anna", name(&models.User{Name: "anna"}))
	assert.Empty(t, name(nil))
}

func TestNotFoundPageRenders(t *testing.T) {
	var buf bytes.Buffer
	err := Templates().ExecuteTemplate(&buf, "404.html", map[string]any{"Title": "Nicht gefunden"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Die angeforderte Seite existiert nicht")
	assert.Contains(t, buf.String(), "Anmelden")
}
