// SPDX-License-Identifier: MIT

// Package schedule reads the conference programme from the backend.
package schedule

import (
	"encoding/json"
	"time"

	"github.com/connectapp/connect/internal/wire"
)

// AllTypes is the filter value that matches every activity type.
const AllTypes = "Todos"

// Defaults applied to incomplete records.
const (
	DefaultTitle    = "Sem título"
	DefaultType     = "Atividade"
	DefaultLocation = "Local a definir"
)

// TimeSlot is one scheduled occurrence of an activity.
type TimeSlot struct {
	Start string `json:"date_start"`
	End   string `json:"date_end"`
}

// StartTime parses Start as RFC 3339.
func (s TimeSlot) StartTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s.Start)
	return t, err == nil
}

// Speaker presents an activity.
type Speaker struct {
	Name  string `json:"nome"`
	Photo string `json:"foto,omitempty"`
	Bio   string `json:"bio,omitempty"`
}

// Activity is a normalized schedule entry.
type Activity struct {
	ID          string     `json:"id"`
	Title       string     `json:"titulo"`
	Description string     `json:"descricao"`
	Type        string     `json:"tipo"`
	Location    string     `json:"local"`
	Slots       []TimeSlot `json:"horarios"`
	Speakers    []Speaker  `json:"palestrantes"`
}

// Start returns the first slot's start time.
func (a Activity) Start() (time.Time, bool) {
	if len(a.Slots) == 0 {
		return time.Time{}, false
	}
	return a.Slots[0].StartTime()
}

// rawActivity tolerates the loose shapes the backend sends.
type rawActivity struct {
	ID          wire.FlexString `json:"id"`
	Title       string          `json:"titulo"`
	Description string          `json:"descricao"`
	Type        string          `json:"tipo"`
	Location    string          `json:"local"`
	Slots       []TimeSlot      `json:"horarios"`
	Speakers    []Speaker       `json:"palestrantes"`
}

func (r rawActivity) normalize() Activity {
	a := Activity{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		Location:    r.Location,
		Slots:       r.Slots,
		Speakers:    r.Speakers,
	}
	if a.Title == "" {
		a.Title = DefaultTitle
	}
	if a.Type == "" {
		a.Type = DefaultType
	}
	if a.Location == "" {
		a.Location = DefaultLocation
	}
	if a.Slots == nil {
		a.Slots = []TimeSlot{}
	}
	if a.Speakers == nil {
		a.Speakers = []Speaker{}
	}
	return a
}

// Normalize decodes a backend activity list. Anything other than a JSON
// array yields an empty list.
func Normalize(body []byte) ([]Activity, error) {
	var raws []rawActivity
	if err := json.Unmarshal(body, &raws); err != nil {
		var probe any
		if json.Unmarshal(body, &probe) == nil {
			if _, isArray := probe.([]any); !isArray {
				return []Activity{}, nil
			}
		}
		return nil, err
	}
	out := make([]Activity, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.normalize())
	}
	return out, nil
}
