// Package elements fetches, parses and caches two-line element sets.
//
// A run wants the freshest elements it can get: the live Celestrak group
// dumps are tried first and the result is persisted to disk, so that later
// runs survive network outages on last-known-good data.
package elements

import (
	"sort"
	"time"
)

// Element is one satellite's parsed TLE group.
type Element struct {
	Name    string    `json:"name"`
	NoradID int       `json:"norad_id"`
	Line1   string    `json:"line1"`
	Line2   string    `json:"line2"`
	Epoch   time.Time `json:"epoch"`
}

// Set holds the latest known element set per satellite, keyed by the name
// line of the TLE group. Later entries for the same name win, which makes
// concatenating overlapping sources safe.
type Set map[string]Element

// ByNoradID finds an element set by NORAD catalog number. Lookups go by
// number rather than name because Celestrak decorates name lines with
// status suffixes that configuration files should not have to mirror.
func (s Set) ByNoradID(id int) (Element, bool) {
	for _, el := range s {
		if el.NoradID == id {
			return el, true
		}
	}
	return Element{}, false
}

// Names returns the satellite names in the set, sorted.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
