package forms

import (
	"strings"

	"campus-gms/catalog"
	"campus-gms/types"
)

// Payload maps a form state onto the submission shape the API accepts.
// Well-known fields go to their own keys; everything else rides in Fields.
func (f *Form) Payload(st State, by types.Reporter) types.IssueSubmission {
	sub := types.IssueSubmission{
		Category:   f.def.Key,
		ActionItem: f.def.ActionItem,
		Type:       string(st.OptionType),
		Domain:     st.Domain,
		Anonymous:  st.Anonymous,
		RaisedBy:   by,
	}

	for name, value := range st.Fields {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch name {
		case catalog.FieldBlock:
			sub.Block = value
		case catalog.FieldFloor:
			sub.Floor = value
		case catalog.FieldRoom:
			sub.Room = value
		case catalog.FieldComments:
			sub.Comments = value
		default:
			if sub.Fields == nil {
				sub.Fields = make(map[string]string)
			}
			sub.Fields[name] = value
		}
	}

	if st.OptionType == catalog.OptionFeedback && len(st.Ratings) > 0 {
		sub.Ratings = make(map[string]int, len(st.Ratings))
		for k, v := range st.Ratings {
			sub.Ratings[string(k)] = v
		}
	}
	if len(st.Attachments) > 0 {
		sub.Attachments = append([]string(nil), st.Attachments...)
	}

	if f.def.Bookkeeping {
		created, updated := st.CreatedAt, st.UpdatedAt
		sub.Status = st.Status
		sub.CreatedAt = &created
		sub.UpdatedAt = &updated
	}
	return sub
}

// FromSubmission rebuilds a form state from a received payload so the
// server can apply the same validation the client did. Unknown names are
// kept verbatim and surface as validation errors or are ignored.
func (f *Form) FromSubmission(sub types.IssueSubmission) State {
	st := State{
		Category:    sub.Category,
		Fields:      make(map[string]string),
		Domain:      sub.Domain,
		Ratings:     make(map[catalog.RatingField]int),
		Attachments: append([]string(nil), sub.Attachments...),
		Anonymous:   sub.Anonymous,
		Status:      sub.Status,
	}
	if o, ok := catalog.ParseOptionType(sub.Type); ok {
		st.OptionType = o
	} else {
		st.OptionType = catalog.OptionType(sub.Type)
	}

	set := func(name, value string) {
		if value != "" && f.def.HasField(name) {
			st.Fields[name] = value
		}
	}
	set(catalog.FieldBlock, sub.Block)
	set(catalog.FieldFloor, sub.Floor)
	set(catalog.FieldRoom, sub.Room)
	set(catalog.FieldComments, sub.Comments)
	for name, value := range sub.Fields {
		set(name, value)
	}
	for name, value := range sub.Ratings {
		st.Ratings[catalog.RatingField(name)] = value
	}
	if sub.CreatedAt != nil {
		st.CreatedAt = *sub.CreatedAt
	}
	if sub.UpdatedAt != nil {
		st.UpdatedAt = *sub.UpdatedAt
	}
	return st
}
