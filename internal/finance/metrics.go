package finance

import (
	"github.com/rotisserie/eris"

	"github.com/rentfolio/analyzer-cli/internal/model"
)

// ComputeMetrics derives the full metrics set from price, total monthly
// rent, and an expense breakdown. Mortgage payments are excluded from NOI
// but included in cash flow. It is an error to call this without a positive
// price and rent; the caller should report insufficient data instead.
func ComputeMetrics(price, totalMonthlyRent float64, exp model.ExpenseBreakdown, a Assumptions) (*model.FinancialMetrics, error) {
	if price <= 0 {
		return nil, eris.New("finance: price must be positive")
	}
	if totalMonthlyRent <= 0 {
		return nil, eris.New("finance: monthly rent must be positive")
	}

	annualNOI := totalMonthlyRent*12 - exp.Operating()*12
	downPayment := price * a.DownPaymentFraction
	closingCosts := price * a.ClosingCostFraction
	totalInvestment := downPayment + closingCosts

	monthlyCashFlow := totalMonthlyRent - exp.Total()
	annualCashFlow := monthlyCashFlow * 12

	var cashOnCash float64
	if totalInvestment > 0 {
		cashOnCash = annualCashFlow / totalInvestment * 100
	}

	annualDebtService := exp.Mortgage * 12
	var dscr float64
	if annualDebtService > 0 {
		dscr = annualNOI / annualDebtService
	}

	return &model.FinancialMetrics{
		CapRate:          annualNOI / price * 100,
		CashOnCashReturn: cashOnCash,
		DSCR:             dscr,
		OnePercentRule:   totalMonthlyRent / price * 100,
		MonthlyCashFlow:  monthlyCashFlow,
		AnnualCashFlow:   annualCashFlow,
		MonthlyNOI:       annualNOI / 12,
		AnnualNOI:        annualNOI,
		TotalInvestment:  totalInvestment,
		DownPayment:      downPayment,
		ClosingCosts:     closingCosts,
	}, nil
}
