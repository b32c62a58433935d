package email

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names a file under templates/ without its extension.
type Template string

const (
	TemplateWelcome Template = "welcome"
)

// WelcomeData is the data the welcome template renders.
type WelcomeData struct {
	Nickname string
}

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Render executes the named template.
func Render(name Template, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(name)+".html", data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}
	return body.String(), nil
}
