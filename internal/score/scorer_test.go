package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rentfolio/analyzer-cli/internal/model"
)

func metrics(coc, capRate, dscr, cashFlow float64) *model.FinancialMetrics {
	return &model.FinancialMetrics{
		CashOnCashReturn: coc,
		CapRate:          capRate,
		DSCR:             dscr,
		MonthlyCashFlow:  cashFlow,
	}
}

func TestScoreBands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		m         *model.FinancialMetrics
		wantScore int
		wantBadge model.Badge
	}{
		{
			name:      "top of every band",
			m:         metrics(12, 8, 1.5, 500),
			wantScore: 100,
			wantBadge: model.BadgeExcellent,
		},
		{
			name:      "strong but not maximal",
			m:         metrics(9, 6.5, 1.3, 350),
			wantScore: 28 + 20 + 16 + 16, // 80
			wantBadge: model.BadgeGood,
		},
		{
			name:      "middling deal",
			m:         metrics(5.5, 4.2, 1.05, 160),
			wantScore: 20 + 15 + 6 + 12, // 53
			wantBadge: model.BadgeFair,
		},
		{
			name:      "thin margins",
			m:         metrics(2.5, 2.1, 0.9, 60),
			wantScore: 10 + 8 + 0 + 6, // 24
			wantBadge: model.BadgeAvoid,
		},
		{
			name:      "negative everything",
			m:         metrics(-9.9, 4.1, 0.64, -571.73),
			wantScore: 15, // cap rate band only
			wantBadge: model.BadgeAvoid,
		},
		{
			name:      "breakeven edges",
			m:         metrics(0, 0, 0, 0),
			wantScore: 5 + 0 + 0 + 2, // 7
			wantBadge: model.BadgeAvoid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.m)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantBadge, got.Badge)
			assert.NotEmpty(t, got.BadgeDescription)
		})
	}
}

func TestScoreNilMetrics(t *testing.T) {
	t.Parallel()

	got := Score(nil)
	assert.Zero(t, got.Score)
	assert.Equal(t, model.BadgeInsufficientData, got.Badge)
	assert.Equal(t, Description(model.BadgeInsufficientData), got.BadgeDescription)
}

// Improving any single metric never lowers the score.
func TestScoreMonotonic(t *testing.T) {
	t.Parallel()

	base := metrics(4, 3, 1.0, 100)
	baseScore := Score(base).Score

	better := []*model.FinancialMetrics{
		metrics(9, 3, 1.0, 100),
		metrics(4, 7, 1.0, 100),
		metrics(4, 3, 1.4, 100),
		metrics(4, 3, 1.0, 400),
	}
	for _, m := range better {
		assert.GreaterOrEqual(t, Score(m).Score, baseScore)
	}
}

func TestBadgeThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  model.Badge
	}{
		{100, model.BadgeExcellent},
		{85, model.BadgeExcellent},
		{84, model.BadgeGood},
		{70, model.BadgeGood},
		{69, model.BadgeFair},
		{50, model.BadgeFair},
		{49, model.BadgeRisky},
		{30, model.BadgeRisky},
		{29, model.BadgeAvoid},
		{0, model.BadgeAvoid},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, badgeFor(tt.score), "score=%d", tt.score)
	}
}

func TestDescriptionUnknownBadge(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Description(model.Badge("mystery")))
}
