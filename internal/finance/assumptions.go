// Package finance derives operating expenses, financing costs, and the
// standard investment metrics from price and rent.
package finance

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Assumptions holds the financing and expense-rate assumptions used to
// derive an expense breakdown. Annual rates are fractions of price per year;
// rent rates are fractions of monthly rent.
type Assumptions struct {
	DownPaymentFraction float64 `yaml:"down_payment_fraction"`
	AnnualInterestRate  float64 `yaml:"annual_interest_rate"`
	TermYears           int     `yaml:"term_years"`
	ClosingCostFraction float64 `yaml:"closing_cost_fraction"`

	PropertyTaxRate float64 `yaml:"property_tax_rate"` // annual, of price
	InsuranceRate   float64 `yaml:"insurance_rate"`    // annual, of price
	MaintenanceRate float64 `yaml:"maintenance_rate"`  // annual, of price
	VacancyRate     float64 `yaml:"vacancy_rate"`      // of monthly rent
	ManagementRate  float64 `yaml:"management_rate"`   // of monthly rent
	MonthlyHOA      float64 `yaml:"monthly_hoa"`
}

// DefaultAssumptions returns the standard underwriting assumptions.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		DownPaymentFraction: 0.20,
		AnnualInterestRate:  0.07,
		TermYears:           30,
		ClosingCostFraction: 0.03,
		PropertyTaxRate:     0.012,
		InsuranceRate:       0.005,
		MaintenanceRate:     0.010,
		VacancyRate:         0.05,
		ManagementRate:      0.10,
		MonthlyHOA:          0,
	}
}

// LoadAssumptions reads assumption overrides from a YAML file. Fields left
// at zero in the file keep their defaults.
func LoadAssumptions(path string) (Assumptions, error) {
	a := DefaultAssumptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return a, eris.Wrapf(err, "finance: read assumptions %s", path)
	}

	var override Assumptions
	if err := yaml.Unmarshal(data, &override); err != nil {
		return a, eris.Wrap(err, "finance: parse assumptions")
	}

	if override.DownPaymentFraction > 0 {
		a.DownPaymentFraction = override.DownPaymentFraction
	}
	if override.AnnualInterestRate > 0 {
		a.AnnualInterestRate = override.AnnualInterestRate
	}
	if override.TermYears > 0 {
		a.TermYears = override.TermYears
	}
	if override.ClosingCostFraction > 0 {
		a.ClosingCostFraction = override.ClosingCostFraction
	}
	if override.PropertyTaxRate > 0 {
		a.PropertyTaxRate = override.PropertyTaxRate
	}
	if override.InsuranceRate > 0 {
		a.InsuranceRate = override.InsuranceRate
	}
	if override.MaintenanceRate > 0 {
		a.MaintenanceRate = override.MaintenanceRate
	}
	if override.VacancyRate > 0 {
		a.VacancyRate = override.VacancyRate
	}
	if override.ManagementRate > 0 {
		a.ManagementRate = override.ManagementRate
	}
	if override.MonthlyHOA > 0 {
		a.MonthlyHOA = override.MonthlyHOA
	}

	return a, nil
}
