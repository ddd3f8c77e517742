package model

import "time"

// ExpenseBreakdown is the full monthly operating-expense picture for a
// property. Every amount is a non-negative monthly dollar figure.
type ExpenseBreakdown struct {
	Mortgage    float64 `json:"mortgage"`
	PropertyTax float64 `json:"propertyTax"`
	Insurance   float64 `json:"insurance"`
	Maintenance float64 `json:"maintenance"`
	Vacancy     float64 `json:"vacancy"`
	Management  float64 `json:"management"`
	HOA         float64 `json:"hoa"`
}

// Operating returns the monthly operating expenses excluding the mortgage,
// the amounts that reduce NOI.
func (e ExpenseBreakdown) Operating() float64 {
	return e.PropertyTax + e.Insurance + e.Maintenance + e.Vacancy + e.Management + e.HOA
}

// Total returns all monthly expense categories including the mortgage.
func (e ExpenseBreakdown) Total() float64 {
	return e.Operating() + e.Mortgage
}

// FinancialMetrics holds the standard investment ratios and cash flows,
// derived deterministically from price, rent, and expenses.
type FinancialMetrics struct {
	CapRate          float64 `json:"capRate"`          // percent
	CashOnCashReturn float64 `json:"cashOnCashReturn"` // percent
	DSCR             float64 `json:"dscr"`             // ratio
	OnePercentRule   float64 `json:"onePercentRule"`   // percent
	MonthlyCashFlow  float64 `json:"monthlyCashFlow"`
	AnnualCashFlow   float64 `json:"annualCashFlow"`
	MonthlyNOI       float64 `json:"monthlyNOI"`
	AnnualNOI        float64 `json:"annualNOI"`
	TotalInvestment  float64 `json:"totalInvestment"`
	DownPayment      float64 `json:"downPayment"`
	ClosingCosts     float64 `json:"closingCosts"`
}

// Badge is the categorical deal-quality classification.
type Badge string

const (
	BadgeExcellent        Badge = "excellent"
	BadgeGood             Badge = "good"
	BadgeFair             Badge = "fair"
	BadgeRisky            Badge = "risky"
	BadgeAvoid            Badge = "avoid"
	BadgeInsufficientData Badge = "insufficient-data"
)

// ScoreResult is the 0-100 weighted score, its badge, and a short
// human-readable description of the badge.
type ScoreResult struct {
	Score            int    `json:"score"`
	Badge            Badge  `json:"badge"`
	BadgeDescription string `json:"badgeDescription"`
}

// EnrichedAnalysis is the full analysis output consumed by the presentation
// layer. CashFlow and ROI are nil when the score is insufficient-data.
type EnrichedAnalysis struct {
	Property         NormalizedProperty `json:"property"`
	RentEstimate     float64            `json:"rentEstimate"` // per unit
	TotalMonthlyRent float64            `json:"totalMonthlyRent"`
	RentConfidence   Confidence         `json:"rentConfidence"`
	RentSource       RentSource         `json:"rentSource"`
	UnitCount        int                `json:"unitCount"`
	IsMultiFamily    bool               `json:"isMultiFamily"`
	InvestmentScore  int                `json:"investmentScore"`
	InvestmentBadge  Badge              `json:"investmentBadge"`
	BadgeDescription string             `json:"badgeDescription"`
	CashFlow         *float64           `json:"cashFlow"` // monthly
	ROI              *float64           `json:"roi"`      // cash-on-cash, percent
	Metrics          *FinancialMetrics  `json:"metrics,omitempty"`
	Expenses         *ExpenseBreakdown  `json:"expenses,omitempty"`
	Features         *FeatureRecord     `json:"features,omitempty"`
}

// FeatureRecord holds authoritative parcel data passed through from the
// feature-record provider. Only Units participates in the analysis itself.
type FeatureRecord struct {
	Units          *int            `json:"units,omitempty"`
	YearBuilt      *int            `json:"yearBuilt,omitempty"`
	TaxAssessments []TaxAssessment `json:"taxAssessments,omitempty"`
}

// TaxAssessment is one year of assessed value history.
type TaxAssessment struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Favorite is a saved property snapshot. The snapshot fields are frozen at
// save time; re-analysis does not update them.
type Favorite struct {
	ID                string    `json:"id"`
	Address           string    `json:"address"`
	RentEstimate      float64   `json:"rentEstimate"`
	InvestmentBadge   Badge     `json:"investmentBadge"`
	QuickScore        int       `json:"quickScore"`
	EstimatedCashFlow float64   `json:"estimatedCashFlow"`
	SavedAt           time.Time `json:"savedAt"`
}
