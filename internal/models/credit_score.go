package models

import "time"

const (
	MinCreditScore     = 0
	MaxCreditScore     = 1000
	InitialCreditScore = 500
)

// Credit rating bands, from best to worst.
const (
	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingFair      = "Fair"
	RatingPoor      = "Poor"
	RatingBad       = "Bad"
)

// CreditScore is a 0–1000 risk indicator per owner. The score is re-clamped
// after every adjustment; the rating is a pure function of the score.
type CreditScore struct {
	OwnerID            string    `gorm:"type:varchar(64);primaryKey" json:"owner_id"`
	Score              int       `gorm:"not null" json:"score"`
	LoansCompleted     int       `gorm:"not null;default:0" json:"loans_completed"`
	LoansDefaulted     int       `gorm:"not null;default:0" json:"loans_defaulted"`
	DepositsCompleted  int       `gorm:"not null;default:0" json:"deposits_completed"`
	OnTimePayments     int       `gorm:"not null;default:0" json:"on_time_payments"`
	LatePayments       int       `gorm:"not null;default:0" json:"late_payments"`
	LastUpdated        time.Time `gorm:"not null" json:"last_updated"`
}

func (c *CreditScore) TableName() string { return "credit_scores" }

// NewCreditScore starts an owner at the given initial score, clamped.
func NewCreditScore(owner string, initial int, now time.Time) *CreditScore {
	c := &CreditScore{OwnerID: owner, LastUpdated: now}
	c.Set(initial, now)
	return c
}

// Adjust shifts the score by delta (negative allowed) and re-clamps.
func (c *CreditScore) Adjust(delta int, now time.Time) {
	c.Set(c.Score+delta, now)
}

// Set assigns the score, clamped to [MinCreditScore, MaxCreditScore].
func (c *CreditScore) Set(score int, now time.Time) {
	if score < MinCreditScore {
		score = MinCreditScore
	}
	if score > MaxCreditScore {
		score = MaxCreditScore
	}
	c.Score = score
	c.LastUpdated = now
}

// Rating maps the score to its band.
func (c *CreditScore) Rating() string {
	switch {
	case c.Score >= 800:
		return RatingExcellent
	case c.Score >= 600:
		return RatingGood
	case c.Score >= 400:
		return RatingFair
	case c.Score >= 200:
		return RatingPoor
	default:
		return RatingBad
	}
}
