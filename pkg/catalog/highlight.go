package catalog

import (
	"regexp"
	"strings"
)

// Segment is one run of a display string after highlight splitting. Match
// marks runs that equal the query (case-insensitively) and should be
// emphasised by the renderer. Joining the Text of all segments always
// reproduces the original string.
type Segment struct {
	Text  string
	Match bool
}

// HighlightSegments splits s on query, case-insensitively, with regex
// metacharacters in the query escaped. An empty query, or a query not found
// in s, yields a single non-match segment. Presentation-only; the input is
// never altered.
func HighlightSegments(s, query string) []Segment {
	if s == "" {
		return nil
	}
	if strings.TrimSpace(query) == "" {
		return []Segment{{Text: s}}
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		// QuoteMeta makes this unreachable for any query; fall back to no
		// highlighting rather than dropping the string.
		return []Segment{{Text: s}}
	}

	var segments []Segment
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: s[last:loc[0]]})
		}
		segments = append(segments, Segment{Text: s[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(s) {
		segments = append(segments, Segment{Text: s[last:]})
	}
	if len(segments) == 0 {
		return []Segment{{Text: s}}
	}
	return segments
}
