package forms

import "campus-gms/catalog"

// Action is a named state update. The set is closed: only the types below
// implement it.
type Action interface {
	isAction()
}

// SetField writes one text field declared by the category.
type SetField struct {
	Name  string
	Value string
}

// SetFormData merges several text fields at once, e.g. from a QR scan.
// Keys the category does not declare are dropped.
type SetFormData struct {
	Values map[string]string
}

// SetOptionType switches between Complaint, Feedback and Suggestion.
type SetOptionType struct {
	Type catalog.OptionType
}

// SetDomain picks one of the category's complaint domains.
type SetDomain struct {
	Domain string
}

// SetRating scores one of the category's rating fields.
type SetRating struct {
	Field catalog.RatingField
	Value int
}

// AddAttachment appends an uploaded file URL.
type AddAttachment struct {
	URL string
}

// RemoveAttachment drops an uploaded file URL.
type RemoveAttachment struct {
	URL string
}

// SetAnonymous toggles reporter anonymity where the category allows it.
type SetAnonymous struct {
	Anonymous bool
}

// Reset clears every value back to a fresh form.
type Reset struct{}

func (SetField) isAction()         {}
func (SetFormData) isAction()      {}
func (SetOptionType) isAction()    {}
func (SetDomain) isAction()        {}
func (SetRating) isAction()        {}
func (AddAttachment) isAction()    {}
func (RemoveAttachment) isAction() {}
func (SetAnonymous) isAction()     {}
func (Reset) isAction()            {}
