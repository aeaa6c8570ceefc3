// SPDX-License-Identifier: MIT

package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleActivities() []Activity {
	return []Activity{
		{ID: "1", Title: "Sessão de abertura", Type: "Palestra", Speakers: []Speaker{{Name: "Ana Lúcia"}}},
		{ID: "2", Title: "Go na prática", Description: "Concorrência com goroutines", Type: "Oficina"},
		{ID: "3", Title: "Encerramento", Type: "palestra"},
		{ID: "4", Title: "Ética em IA", Type: "Mesa Redonda"},
	}
}

func ids(list []Activity) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		tipo  string
		query string
		want  []string
	}{
		{"all", AllTypes, "", []string{"1", "2", "3", "4"}},
		{"empty type", "", "", []string{"1", "2", "3", "4"}},
		{"type case-insensitive", "PALESTRA", "", []string{"1", "3"}},
		{"accent-insensitive title", AllTypes, "sessao", []string{"1"}},
		{"accented query", AllTypes, "ÉTICA", []string{"4"}},
		{"description", AllTypes, "concorrencia", []string{"2"}},
		{"speaker", AllTypes, "lucia", []string{"1"}},
		{"type and query", "Palestra", "encerr", []string{"3"}},
		{"no match", "Oficina", "abertura", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sampleActivities(), tt.tipo, tt.query)))
		})
	}
}

func TestTypes(t *testing.T) {
	got := Types([]Activity{
		{Type: "Palestra"}, {Type: "Oficina"}, {Type: "Palestra"},
		{Type: "Ética"}, {Type: "Mesa Redonda"}, {Type: ""},
	})
	assert.Equal(t, []string{AllTypes, "Ética", "Mesa Redonda", "Oficina", "Palestra"}, got)

	assert.Equal(t, []string{AllTypes}, Types(nil))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "sessao", fold("  Sessão "))
	assert.Equal(t, "acao", fold("AÇÃO"))
}
