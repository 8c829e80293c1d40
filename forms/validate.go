package forms

import (
	"errors"
	"fmt"
	"strings"

	"campus-gms/catalog"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError lists what keeps a form from being submitted.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid values: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validate checks the category's required-field rules against st.
//
// Complaints and suggestions need a domain and the comments field; feedback
// needs every rating of the category. Location fields used for duplicate
// matching are always required.
func (f *Form) Validate(st State) error {
	ve := &ValidationError{}
	def := f.def

	if st.Category != def.Key {
		ve.Invalid = append(ve.Invalid, fmt.Sprintf("category %q", st.Category))
	}

	required := make(map[string]bool)
	for _, name := range def.LocationFields() {
		required[name] = true
	}
	for _, fld := range def.Fields {
		if fld.Required {
			required[fld.Name] = true
		}
	}

	switch st.OptionType {
	case "":
		ve.Missing = append(ve.Missing, "type")
	case catalog.OptionComplaint, catalog.OptionSuggestion:
		if !def.AllowsOption(st.OptionType) {
			ve.Invalid = append(ve.Invalid, "type")
			break
		}
		if st.Domain == "" {
			ve.Missing = append(ve.Missing, "domain")
		} else if !def.HasDomain(st.Domain) {
			ve.Invalid = append(ve.Invalid, "domain")
		}
		if def.HasField(catalog.FieldComments) {
			required[catalog.FieldComments] = true
		}
		if len(st.Ratings) > 0 {
			ve.Invalid = append(ve.Invalid, "ratings")
		}
	case catalog.OptionFeedback:
		if !def.AllowsOption(st.OptionType) {
			ve.Invalid = append(ve.Invalid, "type")
			break
		}
		for _, r := range def.Ratings {
			v, ok := st.Ratings[r.Name]
			switch {
			case !ok || v == 0:
				ve.Missing = append(ve.Missing, string(r.Name))
			case v < 1 || v > def.RatingScale:
				ve.Invalid = append(ve.Invalid, string(r.Name))
			}
		}
		for name := range st.Ratings {
			if !def.HasRating(name) {
				ve.Invalid = append(ve.Invalid, string(name))
			}
		}
		if st.Domain != "" {
			ve.Invalid = append(ve.Invalid, "domain")
		}
	default:
		ve.Invalid = append(ve.Invalid, "type")
	}

	// Field order follows the definition so messages read like the form.
	for _, fld := range def.Fields {
		if required[fld.Name] && strings.TrimSpace(st.Fields[fld.Name]) == "" {
			ve.Missing = append(ve.Missing, fld.Name)
		}
	}

	if st.Anonymous && !def.AllowAnonymous {
		ve.Invalid = append(ve.Invalid, "anonymous")
	}

	if len(ve.Missing) == 0 && len(ve.Invalid) == 0 {
		return nil
	}
	return ve
}
