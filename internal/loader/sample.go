package loader

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/chevolec/portalgen/internal/model"
)

// SampleEntries are the rows written by WriteSample. Exported so tests
// and documentation stay in sync with what the tool actually emits.
var SampleEntries = []model.SiteEntry{
	{Title: "Gmail", URL: "https://gmail.com", Description: "Webmail"},
	{Title: "Wikipedia", URL: "https://wikipedia.org", Description: "The free encyclopedia"},
	{Title: "YouTube", URL: "https://youtube.com", Description: "Videos and streams"},
}

// WriteSample writes a small example CSV with the documented header and a
// few rows. It refuses to overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, not overwriting", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sample file: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&SampleEntries, f); err != nil {
		return fmt.Errorf("write sample file: %w", err)
	}
	return nil
}
