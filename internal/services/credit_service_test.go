package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditRateModifierTiers(t *testing.T) {
	tb := NewTestBank(t, nil)
	credit := tb.Bank.credit

	tests := []struct {
		score int
		want  float64
	}{
		{850, -0.03},
		{800, -0.03},
		{700, -0.015},
		{500, 0},
		{300, 0.025},
		{100, 0.05},
	}

	for _, tt := range tests {
		got := credit.RateModifier(tt.score)
		assert.True(t, got.Equal(decimal.NewFromFloat(tt.want)),
			"score %d: want %v got %s", tt.score, tt.want, got)
	}
}

func TestCreditLoanLimitMultiplier(t *testing.T) {
	tb := NewTestBank(t, nil)
	credit := tb.Bank.credit

	tests := []struct {
		score int
		want  float64
	}{
		{900, 2.0},
		{650, 1.5},
		{450, 1.0},
		{250, 0.5},
		{50, 0.25},
	}

	for _, tt := range tests {
		got := credit.LoanLimitMultiplier(tt.score)
		assert.True(t, got.Equal(decimal.NewFromFloat(tt.want)),
			"score %d: want %v got %s", tt.score, tt.want, got)

		max := credit.MaxLoanAmount(tt.score, decimal.NewFromInt(50000))
		assert.True(t, max.Equal(decimal.NewFromFloat(tt.want*50000)))
	}
}

func TestCreditEventAdjustments(t *testing.T) {
	tb := NewTestBank(t, nil)
	credit := tb.Bank.credit

	score, err := credit.Score("steve")
	require.NoError(t, err)
	assert.Equal(t, 500, score.Score)

	require.NoError(t, credit.RecordLoanCompleted("steve"))
	assert.Equal(t, 550, score.Score)
	assert.Equal(t, 1, score.LoansCompleted)

	require.NoError(t, credit.RecordOnTimePayment("steve"))
	assert.Equal(t, 560, score.Score)

	require.NoError(t, credit.RecordLatePayment("steve"))
	assert.Equal(t, 540, score.Score)
	assert.Equal(t, 1, score.LatePayments)

	require.NoError(t, credit.RecordDepositCompleted("steve"))
	assert.Equal(t, 555, score.Score)

	require.NoError(t, credit.RecordLoanDefaulted("steve"))
	assert.Equal(t, 405, score.Score)
	assert.Equal(t, 1, score.LoansDefaulted)
}

func TestCreditScorePersistsAcrossEvents(t *testing.T) {
	tb := NewTestBank(t, nil)
	credit := tb.Bank.credit

	require.NoError(t, credit.RecordLoanDefaulted("steve"))

	reloaded, err := tb.Store.LoadOrCreateCreditScore("steve")
	require.NoError(t, err)
	assert.Equal(t, 350, reloaded.Score)
}
