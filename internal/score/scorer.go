// Package score maps financial metrics to a weighted 0-100 investment score
// and a categorical deal-quality badge.
package score

import (
	"go.uber.org/zap"

	"github.com/rentfolio/analyzer-cli/internal/model"
)

// band awards points when the metric value is at or above Min.
type band struct {
	Min    float64
	Points int
}

// Band tables per metric. Weights (the top band of each table) sum to 100.
var (
	cashOnCashBands = []band{
		{12, 35}, {8, 28}, {5, 20}, {2, 10}, {0, 5},
	}
	capRateBands = []band{
		{8, 25}, {6, 20}, {4, 15}, {2, 8},
	}
	dscrBands = []band{
		{1.5, 20}, {1.25, 16}, {1.1, 12}, {1.0, 6},
	}
	cashFlowBands = []band{
		{500, 20}, {300, 16}, {150, 12}, {50, 6}, {0, 2},
	}
)

// Badge thresholds, inclusive lower bounds, checked in order.
var badgeThresholds = []struct {
	Min   int
	Badge model.Badge
}{
	{85, model.BadgeExcellent},
	{70, model.BadgeGood},
	{50, model.BadgeFair},
	{30, model.BadgeRisky},
	{0, model.BadgeAvoid},
}

// Score converts metrics into a weighted score and badge. A nil metrics set
// means price or rent was missing, which yields the insufficient-data badge
// with score 0 rather than a numeric band.
func Score(m *model.FinancialMetrics) model.ScoreResult {
	if m == nil {
		return model.ScoreResult{
			Score:            0,
			Badge:            model.BadgeInsufficientData,
			BadgeDescription: Description(model.BadgeInsufficientData),
		}
	}

	total := bandPoints(cashOnCashBands, m.CashOnCashReturn) +
		bandPoints(capRateBands, m.CapRate) +
		bandPoints(dscrBands, m.DSCR) +
		bandPoints(cashFlowBands, m.MonthlyCashFlow)

	badge := badgeFor(total)

	zap.L().Debug("score: computed",
		zap.Int("score", total),
		zap.String("badge", string(badge)),
		zap.Float64("cash_on_cash", m.CashOnCashReturn),
		zap.Float64("cap_rate", m.CapRate),
		zap.Float64("dscr", m.DSCR),
		zap.Float64("monthly_cash_flow", m.MonthlyCashFlow),
	)

	return model.ScoreResult{
		Score:            total,
		Badge:            badge,
		BadgeDescription: Description(badge),
	}
}

func bandPoints(bands []band, value float64) int {
	for _, b := range bands {
		if value >= b.Min {
			return b.Points
		}
	}
	return 0
}

func badgeFor(score int) model.Badge {
	for _, t := range badgeThresholds {
		if score >= t.Min {
			return t.Badge
		}
	}
	return model.BadgeAvoid
}
