package forms

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-gms/catalog"
	"campus-gms/types"
)

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrValidation))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	return ve
}

func TestValidate_ComplaintNeedsDomainAndContent(t *testing.T) {
	f := testForm(t, "classroom")
	st := f.Reduce(f.Initial(), SetOptionType{Type: catalog.OptionComplaint})

	ve := validationError(t, f.Validate(st))
	assert.Equal(t, []string{"domain", "block", "floor", "room", "comments"}, ve.Missing)

	st = f.ReduceAll(st,
		SetDomain{Domain: "Projector"},
		SetFormData{Values: map[string]string{"block": "A", "floor": "1", "room": "A-101"}},
		SetField{Name: "comments", Value: "   "},
	)
	ve = validationError(t, f.Validate(st))
	assert.Equal(t, []string{"comments"}, ve.Missing)

	st = f.Reduce(st, SetField{Name: "comments", Value: "No HDMI cable"})
	assert.NoError(t, f.Validate(st))
}

func TestValidate_FeedbackNeedsEveryRating(t *testing.T) {
	f := testForm(t, "water_dispenser")
	st := f.ReduceAll(f.Initial(),
		SetOptionType{Type: catalog.OptionFeedback},
		SetFormData{Values: map[string]string{"block": "B", "floor": "G"}},
		SetRating{Field: "water_quality", Value: 3},
	)

	ve := validationError(t, f.Validate(st))
	assert.Equal(t, []string{"cleanliness"}, ve.Missing)

	st = f.Reduce(st, SetRating{Field: "cleanliness", Value: 1})
	assert.NoError(t, f.Validate(st), "feedback needs no comments")
}

func TestValidate_BlockOnlyLocation(t *testing.T) {
	f := testForm(t, "lift")
	st := f.ReduceAll(f.Initial(),
		SetOptionType{Type: catalog.OptionSuggestion},
		SetDomain{Domain: "Noise"},
		SetField{Name: "comments", Value: "squeaks"},
	)
	ve := validationError(t, f.Validate(st))
	assert.Equal(t, []string{"block"}, ve.Missing)

	st = f.Reduce(st, SetField{Name: "block", Value: "E"})
	assert.NoError(t, f.Validate(st))
}

func TestValidate_MissingType(t *testing.T) {
	f := testForm(t, "hr_incident")
	ve := validationError(t, f.Validate(f.Initial()))
	assert.Contains(t, ve.Missing, "type")
	assert.Contains(t, ve.Missing, "incident_title")
}

func TestValidate_RejectsTamperedSubmissions(t *testing.T) {
	f := testForm(t, "restroom")
	st := f.FromSubmission(types.IssueSubmission{
		Category: "restroom",
		Type:     "feedback",
		Block:    "A",
		Floor:    "2",
		Domain:   "Plumbing",
		Ratings: map[string]int{
			"cleanliness": 3, "water_availability": 9, "hygiene": 1, "smell": 2,
		},
	})

	ve := validationError(t, f.Validate(st))
	assert.ElementsMatch(t, []string{"water_availability", "smell", "domain"}, ve.Invalid)
	assert.Empty(t, ve.Missing)

	hr := testForm(t, "hr_incident")
	ve = validationError(t, hr.Validate(hr.FromSubmission(types.IssueSubmission{
		Category: "hr_incident",
		Type:     "Feedback",
	})))
	assert.Contains(t, ve.Invalid, "type")
}

func TestPayload_MapsWellKnownFields(t *testing.T) {
	f := testForm(t, "classroom")
	st := f.ReduceAll(f.Initial(),
		SetOptionType{Type: catalog.OptionComplaint},
		SetDomain{Domain: "Furniture"},
		SetFormData{Values: map[string]string{
			"block": " A ", "floor": "1", "room": "A-104", "comments": "broken chair",
		}},
		AddAttachment{URL: "https://cdn/chair.jpg"},
		SetAnonymous{Anonymous: true},
	)

	sub := f.Payload(st, types.Reporter{Name: "Asha", ID: "S1001"})
	assert.Equal(t, types.IssueSubmission{
		Category:    "classroom",
		ActionItem:  "Classroom",
		Type:        "Complaint",
		Domain:      "Furniture",
		Block:       "A",
		Floor:       "1",
		Room:        "A-104",
		Comments:    "broken chair",
		Attachments: []string{"https://cdn/chair.jpg"},
		Anonymous:   true,
		RaisedBy:    types.Reporter{Name: "Asha", ID: "S1001"},
	}, sub)

	// The server rebuilds the same state and accepts it.
	assert.NoError(t, f.Validate(f.FromSubmission(sub)))
}

func TestPayload_BookkeepingAndExtraFields(t *testing.T) {
	clock := time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)
	f := testForm(t, "cse_incident", WithClock(func() time.Time { return clock }))
	st := f.ReduceAll(f.Initial(),
		SetOptionType{Type: catalog.OptionComplaint},
		SetDomain{Domain: "Network"},
		SetField{Name: "incident_title", Value: "Lab 3 offline"},
		SetField{Name: "lab", Value: "Lab 3"},
		SetField{Name: "comments", Value: "no ethernet since morning"},
	)

	sub := f.Payload(st, types.Reporter{Name: "Ravi", ID: "S2002"})
	assert.Equal(t, map[string]string{"incident_title": "Lab 3 offline", "lab": "Lab 3"}, sub.Fields)
	assert.Equal(t, StatusDraft, sub.Status)
	require.NotNil(t, sub.CreatedAt)
	assert.Equal(t, clock, *sub.CreatedAt)
	assert.Empty(t, sub.Block)

	assert.NoError(t, f.Validate(f.FromSubmission(sub)))
}
