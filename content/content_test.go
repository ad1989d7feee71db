package content_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harubang/fengshui-site/content"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Feng Shui Basics", "feng-shui-basics"},
		{"  Trimmed   Runs!!  ", "trimmed-runs"},
		{"Already-slugged", "already-slugged"},
		{"UPPER Case & Symbols #1", "upper-case-symbols-1"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, content.Slugify(tc.title), "title %q", tc.title)
	}
}

func TestReviewValidate(t *testing.T) {
	valid := content.Review{Rating: 5, Body: "Great consultation"}
	require.NoError(t, valid.Validate())

	noBody := content.Review{Rating: 3}
	require.Error(t, noBody.Validate())

	lowRating := content.Review{Rating: 0, Body: "text"}
	require.Error(t, lowRating.Validate())

	highRating := content.Review{Rating: 6, Body: "text"}
	require.Error(t, highRating.Validate())
}

func TestQuestionAnswered(t *testing.T) {
	unanswered := content.Question{Title: "Door placement"}
	require.False(t, unanswered.Answered())

	answered := content.Question{Title: "Door placement", Answer: "Face east"}
	require.True(t, answered.Answered())
}
