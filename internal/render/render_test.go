package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chevolec/portalgen/internal/model"
)

func renderPortal(t *testing.T, layoutPath string, p model.Portal) string {
	t.Helper()
	r, err := New(layoutPath)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, r.WriteIndex(dir, p))

	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	return string(data)
}

func TestWriteIndex_CardsInInputOrder(t *testing.T) {
	p := model.Portal{
		Title: "Team Portal",
		Cards: []model.ResolvedCard{
			{Entry: model.SiteEntry{Title: "Alpha", URL: "https://alpha.example"}, Asset: "assets/img1.png"},
			{Entry: model.SiteEntry{Title: "Beta", URL: "https://beta.example"}, Asset: "assets/img2.png"},
			{Entry: model.SiteEntry{Title: "Gamma", URL: "https://gamma.example"}, Asset: "assets/img3.png"},
		},
		GeneratedAt: time.Now(),
	}

	html := renderPortal(t, "", p)
	assert.Contains(t, html, "Team Portal")

	iAlpha := strings.Index(html, "Alpha")
	iBeta := strings.Index(html, "Beta")
	iGamma := strings.Index(html, "Gamma")
	require.NotEqual(t, -1, iAlpha)
	require.NotEqual(t, -1, iBeta)
	require.NotEqual(t, -1, iGamma)
	assert.Less(t, iAlpha, iBeta)
	assert.Less(t, iBeta, iGamma)

	assert.Contains(t, html, `src="assets/img2.png"`)
}

func TestWriteIndex_EscapesUserText(t *testing.T) {
	p := model.Portal{
		Title: "<script>alert('portal')</script>",
		Cards: []model.ResolvedCard{
			{
				Entry: model.SiteEntry{
					Title:       "<b>bold</b>",
					URL:         "https://ok.example",
					Description: "desc with <script>alert(1)</script>",
				},
				Asset: "assets/img1.png",
			},
		},
		GeneratedAt: time.Now(),
	}

	html := renderPortal(t, "", p)
	assert.NotContains(t, html, "<script>alert")
	assert.NotContains(t, html, "<b>bold</b>")
	assert.Contains(t, html, "&lt;b&gt;bold&lt;/b&gt;")
}

func TestWriteIndex_CardWithoutDescription(t *testing.T) {
	p := model.Portal{
		Title: "Minimal",
		Cards: []model.ResolvedCard{
			{Entry: model.SiteEntry{Title: "Bare", URL: "https://bare.example"}, Asset: "assets/img1.png"},
		},
		GeneratedAt: time.Now(),
	}

	html := renderPortal(t, "", p)
	assert.Contains(t, html, "Bare")
	assert.Contains(t, html, `href="https://bare.example"`)
}

func TestNew_LayoutOverride(t *testing.T) {
	layout := filepath.Join(t.TempDir(), "layout.html")
	require.NoError(t, os.WriteFile(layout, []byte("<h1>{{ .Title }}</h1>{{ len .Cards }} cards"), 0o644))

	html := renderPortal(t, layout, model.Portal{Title: "Custom", GeneratedAt: time.Now()})
	assert.Equal(t, "<h1>Custom</h1>0 cards", html)
}

func TestNew_MissingLayoutFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.html"))
	assert.Error(t, err)
}

func TestLoadAbout_FrontmatterOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "about.md")
	content := `---
title: Overridden Portal
description: From the about file
---

# Welcome

Some **bold** intro.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	about, err := LoadAbout(path)
	require.NoError(t, err)
	assert.Equal(t, "Overridden Portal", about.Title)
	assert.Equal(t, "From the about file", about.Description)
	assert.Contains(t, string(about.Body), "<strong>bold</strong>")
	assert.Contains(t, string(about.Body), `<h1 id="welcome">Welcome</h1>`)
}

func TestLoadAbout_PlainMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "about.md")
	require.NoError(t, os.WriteFile(path, []byte("Just a *paragraph*."), 0o644))

	about, err := LoadAbout(path)
	require.NoError(t, err)
	assert.Empty(t, about.Title)
	assert.Contains(t, string(about.Body), "<em>paragraph</em>")
}

func TestLoadAbout_MissingFile(t *testing.T) {
	_, err := LoadAbout(filepath.Join(t.TempDir(), "absent.md"))
	assert.Error(t, err)
}
