package Models

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxConfig supplies the jurisdiction tax rate applied at invoice commit. The
// rate is persisted on each invoice, so later configuration changes only
// affect future invoices.
type TaxConfig interface {
	RateFor(jurisdiction string) (decimal.Decimal, error)
}

// EnvTaxConfig reads rates from the environment: TAX_RATE_<JURISDICTION> if
// set, TAX_RATE otherwise. Absent both, the rate is zero.
type EnvTaxConfig struct{}

func (EnvTaxConfig) RateFor(jurisdiction string) (decimal.Decimal, error) {
	if jurisdiction != "" {
		if raw := os.Getenv("TAX_RATE_" + strings.ToUpper(jurisdiction)); raw != "" {
			rate, err := decimal.NewFromString(raw)
			if err != nil {
				return decimal.Zero, Errf(ErrValidation, "bad tax rate for %s: %s", jurisdiction, raw)
			}
			return rate, nil
		}
	}
	raw := os.Getenv("TAX_RATE")
	if raw == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, Errf(ErrValidation, "bad tax rate: %s", raw)
	}
	return rate, nil
}

var Tax TaxConfig = EnvTaxConfig{}

// CurrentTaxRate resolves the deployment's configured rate, falling back to
// zero rather than blocking billing on a misconfigured environment.
func CurrentTaxRate() decimal.Decimal {
	rate, err := Tax.RateFor(os.Getenv("TAX_JURISDICTION"))
	if err != nil {
		return decimal.Zero
	}
	return rate
}
