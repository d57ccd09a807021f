// Package render emits the final portal page. The default layout is
// embedded so the binary is self-contained; a layout file on disk can
// replace it.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/chevolec/portalgen/internal/model"
)

//go:embed templates/portal.html
var defaultLayout string

// OutputError marks a fatal failure to write the generated site.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("write output %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// Renderer executes the portal layout. User-supplied text passes through
// html/template contexts only, so titles like "<script>" come out as
// literal text.
type Renderer struct {
	tpl *template.Template
}

var layoutFuncs = template.FuncMap{
	"lower": strings.ToLower,
}

// New parses the layout. layoutPath may be empty to use the embedded
// default.
func New(layoutPath string) (*Renderer, error) {
	src := defaultLayout
	if layoutPath != "" {
		data, err := os.ReadFile(layoutPath)
		if err != nil {
			return nil, fmt.Errorf("read layout %s: %w", layoutPath, err)
		}
		src = string(data)
	}

	tpl, err := template.New("portal").Funcs(layoutFuncs).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// WriteIndex renders the portal into <outputDir>/index.html.
func (r *Renderer) WriteIndex(outputDir string, p model.Portal) error {
	target := filepath.Join(outputDir, "index.html")

	f, err := os.Create(target)
	if err != nil {
		return &OutputError{Path: target, Err: err}
	}
	defer f.Close()

	if err := r.tpl.Execute(f, p); err != nil {
		return &OutputError{Path: target, Err: err}
	}
	return nil
}
