package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taleteller/pkg/errors"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", ModeAdventure},
		{"horror", ModeHorror},
		{" SciFi ", ModeSciFi},
		{"romance", ModeRomance},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMode("western")
	assert.ErrorIs(t, err, apperrors.ErrUnknownMode)
	assert.True(t, apperrors.IsValidation(err))
}

func TestModeTitleAndFileName(t *testing.T) {
	assert.Equal(t, "HORROR Story", ModeHorror.Title())
	assert.Equal(t, "horror-story.pdf", ModeHorror.FileName())
	assert.Equal(t, "Sci-Fi", ModeSciFi.Info().Label)
}

func TestModesCatalogue(t *testing.T) {
	modes := Modes()
	require.Len(t, modes, 6)
	assert.Equal(t, ModeAdventure, modes[0].Mode)

	modes[0].Label = "changed"
	assert.Equal(t, "Adventure", Modes()[0].Label)
}

func TestParseOutputFormat(t *testing.T) {
	f, err := ParseOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	assert.False(t, f.WithImages())

	f, err = ParseOutputFormat("text-images")
	require.NoError(t, err)
	assert.True(t, f.WithImages())

	_, err = ParseOutputFormat("video")
	assert.True(t, apperrors.IsValidation(err))
}

func TestNormalizeChoices(t *testing.T) {
	in := []Choice{
		{ID: 7, Title: "Fight", Description: "Stand your ground"},
		{ID: 8, Title: "  ", Description: ""},
		{ID: 9, Title: "", Description: "Sneak past the guard"},
		{ID: 10, Title: "Run", Description: "Flee into the woods"},
		{ID: 11, Title: "Hide", Description: "Under the bridge"},
	}

	out := NormalizeChoices(in, 3)

	require.Len(t, out, 3)
	for i, c := range out {
		assert.Equal(t, i+1, c.ID)
	}
	assert.Equal(t, "Fight", out[0].Title)
	assert.Equal(t, "Sneak past the guard", out[1].Title)
	assert.Equal(t, "Run", out[2].Title)

	assert.Empty(t, NormalizeChoices([]Choice{{Title: " "}}, 4))
}

func TestFindChoice(t *testing.T) {
	batch := []Choice{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}

	c, ok := FindChoice(batch, 2)
	assert.True(t, ok)
	assert.Equal(t, "b", c.Title)

	_, ok = FindChoice(batch, 3)
	assert.False(t, ok)
}

func TestSuggestionSetAcceptable(t *testing.T) {
	var nilSet *SuggestionSet
	assert.False(t, nilSet.Acceptable())

	set := &SuggestionSet{HasIssues: false, ImprovedVersion: "ignored"}
	set.Normalize()
	assert.False(t, set.Acceptable())
	assert.NotNil(t, set.Suggestions)
	assert.Empty(t, set.ImprovedVersion)

	set = &SuggestionSet{HasIssues: true, ImprovedVersion: "Better."}
	assert.True(t, set.Acceptable())
}
