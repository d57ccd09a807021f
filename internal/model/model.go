package model

import (
	"html/template"
	"time"
)

// SiteEntry is one row of the input CSV. Title and URL are required;
// Image may be a local path or a remote URL, or empty.
type SiteEntry struct {
	Title       string `csv:"title"`
	URL         string `csv:"url"`
	Image       string `csv:"image"`
	Description string `csv:"description"`
}

// ResolvedCard pairs an entry with the portal-relative path of the asset
// that ended up representing it (e.g. "assets/img3.png").
type ResolvedCard struct {
	Entry SiteEntry
	Asset string
}

// Portal holds all page-level data handed to the template.
type Portal struct {
	Title       string
	Description string
	About       template.HTML
	Cards       []ResolvedCard
	GeneratedAt time.Time
}
