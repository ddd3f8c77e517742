package score

import "github.com/rentfolio/analyzer-cli/internal/model"

// badgeDescriptions are the short explanations attached to score results.
// Rendering metadata (labels, icons, colors) belongs to the presentation
// layer, not here.
var badgeDescriptions = map[model.Badge]string{
	model.BadgeExcellent:        "Strong cash flow and returns across every metric",
	model.BadgeGood:             "Solid fundamentals with positive cash flow",
	model.BadgeFair:             "Workable numbers but thin margins",
	model.BadgeRisky:            "Weak returns; likely negative cash flow",
	model.BadgeAvoid:            "The numbers do not support this purchase",
	model.BadgeInsufficientData: "Not enough pricing or rent data to score",
}

// Description returns the human-readable explanation for a badge.
func Description(b model.Badge) string {
	if d, ok := badgeDescriptions[b]; ok {
		return d
	}
	return ""
}
