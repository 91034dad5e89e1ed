package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreditScoreClamping(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c := NewCreditScore("steve", 500, now)
	assert.Equal(t, 500, c.Score)

	c.Adjust(600, now)
	assert.Equal(t, MaxCreditScore, c.Score)

	c.Adjust(-5000, now)
	assert.Equal(t, MinCreditScore, c.Score)

	c2 := NewCreditScore("alex", 99999, now)
	assert.Equal(t, MaxCreditScore, c2.Score)
}

func TestCreditScoreRating(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		score int
		want  string
	}{
		{1000, RatingExcellent},
		{800, RatingExcellent},
		{799, RatingGood},
		{600, RatingGood},
		{599, RatingFair},
		{400, RatingFair},
		{399, RatingPoor},
		{200, RatingPoor},
		{199, RatingBad},
		{0, RatingBad},
	}

	for _, tt := range tests {
		c := NewCreditScore("steve", tt.score, now)
		assert.Equal(t, tt.want, c.Rating(), "score %d", tt.score)
	}
}

func TestCreditScoreAdjustTouchesTimestamp(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	c := NewCreditScore("steve", 500, created)
	c.Adjust(10, later)

	assert.Equal(t, 510, c.Score)
	assert.Equal(t, later, c.LastUpdated)
}
