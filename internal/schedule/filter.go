// SPDX-License-Identifier: MIT

package schedule

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// fold lowercases s and strips diacritics so "Sessão" matches "sessao".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return folder.String(strings.TrimSpace(out))
}

// Filter keeps activities of tipo whose title, description or speaker names
// contain query. AllTypes or "" matches every type; an empty query matches
// everything.
func Filter(activities []Activity, tipo, query string) []Activity {
	wantType := ""
	if tipo != AllTypes {
		wantType = fold(tipo)
	}
	q := fold(query)

	out := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if wantType != "" && fold(a.Type) != wantType {
			continue
		}
		if q != "" && !matches(a, q) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matches(a Activity, q string) bool {
	if strings.Contains(fold(a.Title), q) || strings.Contains(fold(a.Description), q) {
		return true
	}
	for _, s := range a.Speakers {
		if strings.Contains(fold(s.Name), q) {
			return true
		}
	}
	return false
}

// Types lists distinct activity types for the filter bar, AllTypes first and
// the rest in Portuguese collation order.
func Types(activities []Activity) []string {
	seen := make(map[string]struct{})
	var types []string
	for _, a := range activities {
		if a.Type == "" {
			continue
		}
		if _, ok := seen[a.Type]; ok {
			continue
		}
		seen[a.Type] = struct{}{}
		types = append(types, a.Type)
	}
	collate.New(language.BrazilianPortuguese, collate.Loose).SortStrings(types)
	return append([]string{AllTypes}, types...)
}
