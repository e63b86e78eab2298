package page

import "strings"

const (
	// DefaultPage is reported when neither the fragment nor the layout names a section.
	DefaultPage = "home"
	// ReferenceLine is the viewport offset, in px, used to pick the current section.
	ReferenceLine = 100
	// NavOffset is subtracted from a section's document offset when highlighting navigation.
	NavOffset = 100
)

// Section describes the geometry of one page section as last reported by the browser.
// Top and Bottom are relative to the viewport; OffsetTop is relative to the document.
type Section struct {
	ID        string  `json:"id"`
	Top       float64 `json:"top"`
	Bottom    float64 `json:"bottom"`
	OffsetTop float64 `json:"offsetTop"`
}

// CurrentPage resolves the page identifier sent along with chat messages.
// A non-empty URL fragment wins; otherwise the last section crossing line is used.
func CurrentPage(fragment string, sections []Section, line float64) string {
	if len(fragment) > 1 && strings.HasPrefix(fragment, "#") {
		return fragment[1:]
	}

	current := DefaultPage
	for _, s := range sections {
		if s.ID == "" {
			continue
		}
		if s.Top <= line && s.Bottom >= line {
			current = s.ID
		}
	}
	return current
}

// ActiveSection returns the id of the section whose navigation link should be
// highlighted for the given scroll position, or "" if none qualifies yet.
func ActiveSection(scrollY float64, sections []Section) string {
	active := ""
	for _, s := range sections {
		if scrollY >= s.OffsetTop-NavOffset {
			active = s.ID
		}
	}
	return active
}
