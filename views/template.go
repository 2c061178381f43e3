// Package views renders a gallery page as HTML or Markdown.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/http"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/cnosuke/sheet-gallery/gallery"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// GalleryData is passed to the gallery template.
type GalleryData struct {
	Title string
	Page  *gallery.Page
}

// Template wraps the parsed gallery templates.
type Template struct {
	tmpl *template.Template
}

// Parse parses the embedded templates.
func Parse() (*Template, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}
	return &Template{tmpl: tmpl}, nil
}

// MustParse is like Parse but panics on error.
func MustParse() *Template {
	t, err := Parse()
	if err != nil {
		panic(err)
	}
	return t
}

// Execute writes the full HTML page.
func (t *Template) Execute(w io.Writer, data *GalleryData) error {
	return t.tmpl.ExecuteTemplate(w, "gallery", data)
}

// ExecuteHTTP renders the page as an HTTP response. Load failures are part of
// the page, so the status is always 200 unless the template itself fails.
func (t *Template) ExecuteHTTP(w http.ResponseWriter, data *GalleryData) {
	// Render to buffer first to catch errors
	buf := &bytes.Buffer{}
	if err := t.Execute(buf, data); err != nil {
		zap.S().Errorw("template execution error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// RenderMarkdown renders the page and converts the visible parts to Markdown.
func (t *Template) RenderMarkdown(data *GalleryData) (string, error) {
	buf := &bytes.Buffer{}
	if err := t.Execute(buf, data); err != nil {
		return "", errors.Wrap(err, "failed to render page")
	}

	converter := md.NewConverter("", true, nil)
	converter.Remove("head", "script", "style")
	converter.AddRules(md.Rule{
		Filter: []string{"div"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			if selec.HasClass("hidden") {
				return md.String("")
			}
			// Fall through to the default rule.
			return nil
		},
	})

	markdown, err := converter.ConvertString(buf.String())
	if err != nil {
		return "", errors.Wrap(err, "failed to convert page to Markdown")
	}
	return markdown, nil
}
