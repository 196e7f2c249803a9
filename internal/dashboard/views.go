package dashboard

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

// NewViews returns the template engine for the dashboard pages.
func NewViews() *html.Engine {
	templates, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(templates), ".html")
	engine.AddFunc("dict", func() map[string]string { return map[string]string{} })
	engine.AddFunc("zones", func() []string { return zoneOptions })
	return engine
}
