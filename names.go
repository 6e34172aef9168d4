package gtfs

import (
	"strings"
	"unicode/utf8"

	"tripplanner.dev/gtfs/parse"
)

// Generic stop-type words, Polish and English, ignored when comparing
// stop names.
var stopTypeTokens = map[string]bool{
	"dworzec": true,
	"pl.":     true,
	"plac":    true,
	"ul.":     true,
	"ulica":   true,
	"al.":     true,
	"aleja":   true,
	"os.":     true,
	"osiedle": true,
	"rondo":   true,
	"station": true,
	"stn":     true,
	"square":  true,
	"sq":      true,
	"sq.":     true,
	"street":  true,
	"st":      true,
	"st.":     true,
	"avenue":  true,
	"ave":     true,
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func stripStopTypes(name string) string {
	words := strings.Fields(name)
	kept := words[:0]
	for _, w := range words {
		if !stopTypeTokens[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Reports whether a stop name matches a search term. Rules are tried
// most specific first:
//
//  1. case-insensitive equality
//  2. equality once stop-type words (plac, ul., station, sq, ...)
//     are removed from both
//  3. every word of the term longer than 2 characters is a substring
//     of some word of the name, or contains one longer than 2
//  4. for terms longer than 4 characters, substring containment
func MatchStopName(term string, name string) bool {
	t := normalizeName(term)
	n := normalizeName(name)
	if t == "" || n == "" {
		return false
	}

	if t == n {
		return true
	}

	st := stripStopTypes(t)
	sn := stripStopTypes(n)
	if st != "" && st == sn {
		return true
	}

	if matchWords(t, n) {
		return true
	}

	return utf8.RuneCountInString(t) > 4 && strings.Contains(n, t)
}

func matchWords(term string, name string) bool {
	nameWords := strings.Fields(name)

	significant := 0
	for _, tw := range strings.Fields(term) {
		if utf8.RuneCountInString(tw) <= 2 {
			continue
		}
		significant++

		found := false
		for _, nw := range nameWords {
			if strings.Contains(nw, tw) || (utf8.RuneCountInString(nw) > 2 && strings.Contains(tw, nw)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return significant > 0
}

// IDs of the stops whose name matches term, in table order.
func MatchStops(stops []parse.Row, term string) []string {
	ids := []string{}
	for _, row := range stops {
		if MatchStopName(term, row.String("stop_name")) {
			ids = append(ids, row.String("stop_id"))
		}
	}
	return ids
}
