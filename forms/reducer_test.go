package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-gms/catalog"
)

type unknownAction struct{}

func (unknownAction) isAction() {}

func testEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewEngine(c, opts...)
}

func testForm(t *testing.T, key string, opts ...Option) *Form {
	t.Helper()
	f, err := testEngine(t, opts...).Form(key)
	require.NoError(t, err)
	return f
}

func TestReduce_UnknownActionsLeaveStateUnchanged(t *testing.T) {
	f := testForm(t, "classroom")
	st := f.ReduceAll(f.Initial(),
		SetField{Name: "block", Value: "A"},
		SetOptionType{Type: catalog.OptionComplaint},
	)

	cases := map[string]Action{
		"foreign action type":      unknownAction{},
		"nil action":               nil,
		"undeclared field":         SetField{Name: "parking_slot", Value: "12"},
		"domain of another screen": SetDomain{Domain: "Payroll"},
		"rating while complaining": SetRating{Field: "cleanliness", Value: 3},
	}
	for name, act := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, st, f.Reduce(st, act))
		})
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	f := testForm(t, "classroom")
	st := f.Initial()
	next := f.Reduce(st, SetField{Name: "block", Value: "B"})

	assert.Equal(t, "", st.Field("block"))
	assert.Equal(t, "B", next.Field("block"))
}

func TestReduce_SetRatingRejectsStrayFields(t *testing.T) {
	f := testForm(t, "restroom")
	st := f.Reduce(f.Initial(), SetOptionType{Type: catalog.OptionFeedback})

	st = f.Reduce(st, SetRating{Field: "hygiene", Value: 2})
	assert.Equal(t, 2, st.Rating("hygiene"))

	// A misspelt key must not create a new slot.
	same := f.Reduce(st, SetRating{Field: "Hygeine", Value: 3})
	assert.Equal(t, st, same)
	assert.Len(t, same.Ratings, 1)

	// Restrooms rate on a 1-3 scale.
	assert.Equal(t, st, f.Reduce(st, SetRating{Field: "cleanliness", Value: 4}))
	assert.Equal(t, st, f.Reduce(st, SetRating{Field: "cleanliness", Value: 0}))
}

func TestReduce_DomainAndRatingsAreExclusive(t *testing.T) {
	f := testForm(t, "lift")
	st := f.ReduceAll(f.Initial(),
		SetOptionType{Type: catalog.OptionFeedback},
		SetRating{Field: "safety", Value: 5},
	)
	require.Equal(t, 5, st.Rating("safety"))

	st = f.ReduceAll(st,
		SetOptionType{Type: catalog.OptionComplaint},
		SetDomain{Domain: "Door Malfunction"},
	)
	assert.Empty(t, st.Ratings)
	assert.Equal(t, "Door Malfunction", st.Domain)

	st = f.Reduce(st, SetOptionType{Type: catalog.OptionFeedback})
	assert.Empty(t, st.Domain)
}

func TestReduce_SetFormDataMergesKnownFields(t *testing.T) {
	f := testForm(t, "classroom")
	st := f.Reduce(f.Initial(), SetField{Name: "comments", Value: "broken bench"})

	st = f.Reduce(st, SetFormData{Values: map[string]string{
		"block": "C", "floor": "3", "room": "C-301", "building_code": "X9",
	}})

	assert.Equal(t, map[string]string{
		"block": "C", "floor": "3", "room": "C-301", "comments": "broken bench",
	}, st.Fields)
}

func TestReduce_Attachments(t *testing.T) {
	f := testForm(t, "electrical")
	st := f.ReduceAll(f.Initial(),
		AddAttachment{URL: "https://cdn/a.jpg"},
		AddAttachment{URL: "https://cdn/b.jpg"},
		AddAttachment{URL: "https://cdn/a.jpg"},
		AddAttachment{URL: ""},
	)
	assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}, st.Attachments)

	st = f.Reduce(st, RemoveAttachment{URL: "https://cdn/a.jpg"})
	assert.Equal(t, []string{"https://cdn/b.jpg"}, st.Attachments)
}

func TestReduce_AnonymityFollowsCategory(t *testing.T) {
	classroom := testForm(t, "classroom")
	st := classroom.Reduce(classroom.Initial(), SetAnonymous{Anonymous: true})
	assert.True(t, st.Anonymous)

	lift := testForm(t, "lift")
	initial := lift.Initial()
	assert.Equal(t, initial, lift.Reduce(initial, SetAnonymous{Anonymous: true}))
}

func TestReduce_BookkeepingTimestamps(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	f := testForm(t, "hr_incident", WithClock(now))
	st := f.Initial()
	assert.Equal(t, StatusDraft, st.Status)
	assert.Equal(t, clock, st.CreatedAt)
	assert.Equal(t, catalog.OptionType(""), st.OptionType, "two options, nothing preselected")

	clock = clock.Add(time.Minute)
	st = f.Reduce(st, SetField{Name: "incident_title", Value: "Unpaid overtime"})
	assert.Equal(t, clock, st.UpdatedAt)
	assert.Equal(t, clock.Add(-time.Minute), st.CreatedAt)

	clock = clock.Add(time.Minute)
	unchanged := f.Reduce(st, SetField{Name: "incident_title", Value: "Unpaid overtime"})
	assert.Equal(t, st.UpdatedAt, unchanged.UpdatedAt, "no-op edits do not touch updated_at")

	classroom := testForm(t, "classroom", WithClock(now))
	assert.True(t, classroom.Initial().CreatedAt.IsZero())
}

func TestReduce_Reset(t *testing.T) {
	f := testForm(t, "water_dispenser")
	st := f.ReduceAll(f.Initial(),
		SetField{Name: "block", Value: "D"},
		SetOptionType{Type: catalog.OptionComplaint},
	)
	assert.Equal(t, f.Initial(), f.Reduce(st, Reset{}))
}

func TestEngine_UnknownCategory(t *testing.T) {
	_, err := testEngine(t).Form("parking")
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}
