package catalog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEveryCategory(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"classroom", "restroom", "lift", "water_dispenser",
		"electrical", "hr_incident", "cse_incident",
	}, c.Keys())

	lift, err := c.Get("lift")
	require.NoError(t, err)
	assert.Equal(t, "Lift", lift.ActionItem)
	assert.Equal(t, []string{FieldBlock}, lift.LocationFields())
	assert.False(t, lift.UsesFloor())
	assert.Len(t, lift.Options, 3, "options default to all three types")

	restroom, err := c.Get("restroom")
	require.NoError(t, err)
	assert.Equal(t, 3, restroom.RatingScale)
	assert.True(t, restroom.HasRating("hygiene"))
	assert.False(t, restroom.HasRating("Hygiene"))

	hr, err := c.Get("hr_incident")
	require.NoError(t, err)
	assert.True(t, hr.Bookkeeping)
	assert.False(t, hr.AllowsOption(OptionFeedback))
	assert.Nil(t, hr.LocationFields())
}

func TestGet_UnknownCategory(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Get("cafeteria")
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestByActionItem_IgnoresCase(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	cat, ok := c.ByActionItem("water dispenser")
	require.True(t, ok)
	assert.Equal(t, "water_dispenser", cat.Key)

	_, ok = c.ByActionItem("Parking")
	assert.False(t, ok)
}

func TestParseOptionType(t *testing.T) {
	o, ok := ParseOptionType(" feedback ")
	assert.True(t, ok)
	assert.Equal(t, OptionFeedback, o)

	_, ok = ParseOptionType("praise")
	assert.False(t, ok)
}

func TestParse_RejectsInconsistentCatalogs(t *testing.T) {
	cases := map[string]string{
		"feedback without ratings": `
categories:
  - key: gym
    action_item: Gym
    title: Gym
    location: block
    fields: [{ name: block, label: Block }]
    domains: [Equipment]
`,
		"missing location field": `
categories:
  - key: gym
    action_item: Gym
    title: Gym
    location: block_floor
    options: [Complaint]
    fields: [{ name: block, label: Block }]
    domains: [Equipment]
`,
		"duplicate key": `
categories:
  - { key: gym, action_item: Gym, title: Gym, location: none, options: [Complaint], fields: [{ name: comments, label: C }], domains: [A] }
  - { key: gym, action_item: Gym2, title: Gym, location: none, options: [Complaint], fields: [{ name: comments, label: C }], domains: [A] }
`,
		"rating shadows field": `
categories:
  - key: gym
    action_item: Gym
    title: Gym
    location: none
    fields: [{ name: comments, label: C }]
    domains: [A]
    ratings: [{ name: comments, label: C }]
`,
		"unknown location mode": `
categories:
  - { key: gym, action_item: Gym, title: Gym, location: campus, options: [Complaint], fields: [{ name: comments, label: C }], domains: [A] }
`,
		"no categories": `categories: []`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCatalog), err.Error())
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
categories:
  - key: library
    action_item: Library
    title: Library
    location: block
    options: [Complaint, Suggestion]
    fields:
      - { name: block, label: Block, required: true }
      - { name: comments, label: Comments }
    domains: [Noise, Seating]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	cat, err := c.Get("library")
	require.NoError(t, err)
	assert.Equal(t, 5, cat.RatingScale)
	assert.True(t, cat.HasDomain("Noise"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromCategories_AcceptsServedCatalog(t *testing.T) {
	def, err := Default()
	require.NoError(t, err)

	data, err := json.Marshal(def.Categories)
	require.NoError(t, err)
	var served []Category
	require.NoError(t, json.Unmarshal(data, &served))

	c, err := FromCategories(served)
	require.NoError(t, err)
	assert.Equal(t, def.Keys(), c.Keys())

	lift, err := c.Get("lift")
	require.NoError(t, err)
	assert.True(t, lift.HasRating("speed"))

	_, err = FromCategories(nil)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}
