package finance

import "github.com/rentfolio/analyzer-cli/internal/model"

// EstimateExpenses derives the full monthly expense breakdown for a property
// from its price and total monthly rent under the given assumptions.
func EstimateExpenses(price, totalMonthlyRent float64, a Assumptions) model.ExpenseBreakdown {
	return model.ExpenseBreakdown{
		Mortgage:    MonthlyPayment(price, a.DownPaymentFraction, a.AnnualInterestRate, a.TermYears),
		PropertyTax: nonNegative(price * a.PropertyTaxRate / 12),
		Insurance:   nonNegative(price * a.InsuranceRate / 12),
		Maintenance: nonNegative(price * a.MaintenanceRate / 12),
		Vacancy:     nonNegative(totalMonthlyRent * a.VacancyRate),
		Management:  nonNegative(totalMonthlyRent * a.ManagementRate),
		HOA:         nonNegative(a.MonthlyHOA),
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
