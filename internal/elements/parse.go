package elements

import (
	"log"
	"strings"

	"github.com/akhenakh/sgp4"
)

// Parse extracts element sets from a bulk TLE dump in the standard 3-line
// format (name, line 1, line 2) as served by Celestrak. Groups that fail
// TLE validation are logged and skipped rather than failing the whole dump.
//
// Blank lines are dropped before grouping so that concatenated multi-source
// dumps keep their 3-line framing.
func Parse(raw string, logger *log.Logger) Set {
	set := make(Set)

	var lines []string
	for _, ln := range strings.Split(raw, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}

	for i := 0; i+2 < len(lines); i += 3 {
		name := lines[i]
		line1 := lines[i+1]
		line2 := lines[i+2]

		tle, err := sgp4.ParseTLE(name + "\n" + line1 + "\n" + line2)
		if err != nil {
			logger.Printf("elements: skipping %q: %v", name, err)
			continue
		}

		set[name] = Element{
			Name:    name,
			NoradID: tle.SatelliteNumber,
			Line1:   line1,
			Line2:   line2,
			Epoch:   tle.EpochTime().UTC(),
		}
	}

	return set
}
