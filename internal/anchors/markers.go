package anchors

import "github.com/billmal071/trackermeta/internal/config"

// Markers are the textual landmarks used to recognise archive pages.
// Plain markers are matched as substrings of the raw page, selectors are CSS.
type Markers struct {
	// ModulePage only appears on the detail page of an existing module
	ModulePage string
	// Nomination appears when the module carries the nomination badge
	Nomination string
	// Spotlight appears when the module has been featured
	Spotlight string
	// SearchPage appears on every well-formed search results page
	SearchPage string
	// SearchRow selects one result link per row
	SearchRow string
	// InstrumentText selects the instrument listing; the last match wins
	InstrumentText string
}

// DefaultMarkers returns the compiled-in markers
func DefaultMarkers() Markers {
	return Markers{
		ModulePage:     "mod-page-archive-info",
		Nomination:     "mod-page-nominee",
		Spotlight:      "mod-page-featured",
		SearchPage:     "site-wide-page-head-title",
		SearchRow:      "a.standard-link[title]",
		InstrumentText: "pre",
	}
}

// MarkersFromConfig overlays configured markers on the defaults
func MarkersFromConfig(cfg config.MarkersConfig) Markers {
	m := DefaultMarkers()
	overlay(&m.ModulePage, cfg.ModulePage)
	overlay(&m.Nomination, cfg.Nomination)
	overlay(&m.Spotlight, cfg.Spotlight)
	overlay(&m.SearchPage, cfg.SearchPage)
	overlay(&m.SearchRow, cfg.SearchRow)
	overlay(&m.InstrumentText, cfg.InstrumentText)
	return m
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
