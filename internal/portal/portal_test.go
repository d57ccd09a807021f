package portal

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chevolec/portalgen/internal/config"
	"github.com/chevolec/portalgen/internal/loader"
	"github.com/chevolec/portalgen/internal/render"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestGenerate_EndToEnd(t *testing.T) {
	input := writeCSV(t, "team-sites.csv", `title,url,image,description
Alpha,https://alpha.example,,First site
Beta,https://beta.example,,Second site
Gamma,https://gamma.example,,Third site
`)
	cfg := testConfig(t)

	err := Generate(context.Background(), Options{
		Input:  input,
		Config: cfg,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "index.html"))
	require.NoError(t, err)
	page := string(data)

	// Default title comes from the input filename.
	assert.Contains(t, page, "Team Sites")
	for _, want := range []string{"Alpha", "Beta", "Gamma"} {
		assert.Contains(t, page, want)
	}
	assert.Less(t, strings.Index(page, "Alpha"), strings.Index(page, "Beta"))
	assert.Less(t, strings.Index(page, "Beta"), strings.Index(page, "Gamma"))

	// No screenshots and no image column: every card gets a placeholder.
	for i := 1; i <= 3; i++ {
		path := filepath.Join(cfg.OutputDir, "assets", "img"+string(rune('0'+i))+".png")
		f, err := os.Open(path)
		require.NoError(t, err)
		_, err = png.Decode(f)
		f.Close()
		require.NoError(t, err, "%s should be a valid PNG", path)
	}
}

func TestGenerate_Rerun(t *testing.T) {
	input := writeCSV(t, "sites.csv", `title,url
Solo,https://solo.example
`)
	cfg := testConfig(t)
	opts := Options{Input: input, Config: cfg}

	require.NoError(t, Generate(context.Background(), opts))
	require.NoError(t, Generate(context.Background(), opts))

	entries, err := os.ReadDir(filepath.Join(cfg.OutputDir, "assets"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerate_MissingInput(t *testing.T) {
	cfg := testConfig(t)
	err := Generate(context.Background(), Options{
		Input:  filepath.Join(t.TempDir(), "absent.csv"),
		Config: cfg,
	})
	var inputErr *loader.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "index.html"))
}

func TestGenerate_TitlePrecedence(t *testing.T) {
	input := writeCSV(t, "anything.csv", `title,url
One,https://one.example
`)

	t.Run("config title wins over filename", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Title = "Configured Title"
		require.NoError(t, Generate(context.Background(), Options{Input: input, Config: cfg}))

		data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "index.html"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "Configured Title")
	})

	t.Run("about frontmatter wins over config", func(t *testing.T) {
		about := filepath.Join(t.TempDir(), "about.md")
		require.NoError(t, os.WriteFile(about, []byte("---\ntitle: About Title\n---\n\nIntro text.\n"), 0o644))

		cfg := testConfig(t)
		cfg.Title = "Configured Title"
		require.NoError(t, Generate(context.Background(), Options{Input: input, About: about, Config: cfg}))

		data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "index.html"))
		require.NoError(t, err)
		page := string(data)
		assert.Contains(t, page, "About Title")
		assert.Contains(t, page, "Intro text.")
	})
}

func TestGenerate_BadLayoutFails(t *testing.T) {
	input := writeCSV(t, "sites.csv", `title,url
One,https://one.example
`)
	cfg := testConfig(t)
	err := Generate(context.Background(), Options{
		Input:  input,
		Layout: filepath.Join(t.TempDir(), "nope.html"),
		Config: cfg,
	})
	assert.Error(t, err)
}

func TestGenerate_UnwritableOutputDir(t *testing.T) {
	input := writeCSV(t, "sites.csv", `title,url
One,https://one.example
`)
	cfg := testConfig(t)
	// A file where the output directory should be.
	cfg.OutputDir = filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(cfg.OutputDir, []byte("in the way"), 0o644))

	err := Generate(context.Background(), Options{Input: input, Config: cfg})
	var outErr *render.OutputError
	require.True(t, errors.As(err, &outErr))
}

func TestTitleFromFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"my-sites.csv", "My Sites"},
		{"links_for_team.csv", "Links For Team"},
		{"portal.csv", "Portal"},
		{"/tmp/some/dir/dev-tools.csv", "Dev Tools"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, titleFromFilename(tc.in), tc.in)
	}
}
