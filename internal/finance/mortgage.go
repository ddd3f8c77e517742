package finance

import "math"

// MonthlyPayment computes the fixed-rate monthly mortgage payment for a
// purchase at the given price. A zero interest rate amortizes the principal
// linearly. The result is never negative.
func MonthlyPayment(price, downPaymentFraction, annualInterestRate float64, termYears int) float64 {
	principal := price * (1 - downPaymentFraction)
	if principal <= 0 || termYears <= 0 {
		return 0
	}

	n := float64(termYears * 12)
	monthlyRate := annualInterestRate / 12
	if monthlyRate == 0 {
		return principal / n
	}

	factor := math.Pow(1+monthlyRate, n)
	payment := principal * monthlyRate * factor / (factor - 1)
	if payment < 0 {
		return 0
	}
	return payment
}
