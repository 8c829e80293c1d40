// Package forms is the client-side form engine. One Form, parametrized by a
// catalog.Category, replaces a hand-written reducer per report screen.
package forms

import (
	"time"

	"campus-gms/catalog"
)

// Bookkeeping status values for department-incident forms.
const (
	StatusDraft = "draft"
)

// State is the value held by a form while the student edits it.
type State struct {
	Category    string
	Fields      map[string]string
	OptionType  catalog.OptionType
	Domain      string
	Ratings     map[catalog.RatingField]int
	Attachments []string
	Anonymous   bool

	// Bookkeeping fields, only maintained for categories that ask for them.
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Field returns the value of a text field, or "".
func (s State) Field(name string) string {
	return s.Fields[name]
}

// Rating returns the value of a rating, or 0 when unset.
func (s State) Rating(r catalog.RatingField) int {
	return s.Ratings[r]
}

func (s State) clone() State {
	out := s
	out.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	out.Ratings = make(map[catalog.RatingField]int, len(s.Ratings))
	for k, v := range s.Ratings {
		out.Ratings[k] = v
	}
	out.Attachments = append([]string(nil), s.Attachments...)
	return out
}

// equal compares two states field by field, ignoring UpdatedAt.
func (s State) equal(o State) bool {
	if s.Category != o.Category || s.OptionType != o.OptionType || s.Domain != o.Domain ||
		s.Anonymous != o.Anonymous || s.Status != o.Status || !s.CreatedAt.Equal(o.CreatedAt) {
		return false
	}
	if len(s.Fields) != len(o.Fields) || len(s.Ratings) != len(o.Ratings) || len(s.Attachments) != len(o.Attachments) {
		return false
	}
	for k, v := range s.Fields {
		if ov, ok := o.Fields[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range s.Ratings {
		if ov, ok := o.Ratings[k]; !ok || ov != v {
			return false
		}
	}
	for i := range s.Attachments {
		if s.Attachments[i] != o.Attachments[i] {
			return false
		}
	}
	return true
}
