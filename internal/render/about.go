package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// About is an optional Markdown intro rendered above the card grid. Its
// frontmatter may override the portal title and description.
type About struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Body        template.HTML
}

var aboutMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithHardWraps(),
	),
)

// LoadAbout reads a Markdown file with optional frontmatter. A file
// without frontmatter is treated as pure Markdown.
func LoadAbout(path string) (About, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return About{}, fmt.Errorf("read about file %s: %w", path, err)
	}

	var about About
	body, err := frontmatter.Parse(bytes.NewReader(data), &about)
	if err != nil {
		// No parseable frontmatter; use the whole file as Markdown.
		about = About{}
		body = data
	}

	var buf bytes.Buffer
	if err := aboutMarkdown.Convert(body, &buf); err != nil {
		return About{}, fmt.Errorf("render about file %s: %w", path, err)
	}
	about.Body = template.HTML(buf.String())
	return about, nil
}
