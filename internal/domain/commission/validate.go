package commission

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Err joins the validation messages, or returns nil for a valid structure.
func (v ValidationResult) Err() error {
	if v.Valid {
		return nil
	}
	errs := make([]error, 0, len(v.Errors))
	for _, msg := range v.Errors {
		errs = append(errs, errors.New(msg))
	}
	return errors.Join(errs...)
}

// Validate checks a structure for internal consistency and reports every
// violation it finds.
func Validate(structure Structure) ValidationResult {
	errs := validateHeader(structure.Name, structure.BaseRate)
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	switch p := structure.Policy.(type) {
	case nil:
		add("commission type is required")
	case Tiered:
		errs = append(errs, validateTiers(p.Tiers)...)
	case TargetBased:
		if !p.TargetAmount.IsPositive() {
			add("target amount must be greater than 0, got %s", p.TargetAmount)
		}
	}

	return newValidationResult(errs)
}

// ValidateRecord validates a structure as submitted over the wire. A record
// whose type is not recognised reports that type alongside the name and
// rate checks.
func ValidateRecord(record StructureRecord) ValidationResult {
	structure, err := record.Structure()
	if err == nil {
		return Validate(structure)
	}
	errs := validateHeader(record.Name, record.BaseRate)
	if record.Type == "" {
		errs = append(errs, "commission type is required")
	} else {
		errs = append(errs, err.Error())
	}
	return newValidationResult(errs)
}

func validateHeader(name string, baseRate decimal.Decimal) []string {
	var errs []string
	if strings.TrimSpace(name) == "" {
		errs = append(errs, "name is required")
	}
	if !validPercentage(baseRate) {
		errs = append(errs, fmt.Sprintf("base rate must be between 0 and 100, got %s", baseRate))
	}
	return errs
}

func newValidationResult(errs []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func validateTiers(tiers []Tier) []string {
	if len(tiers) == 0 {
		return []string{"tiered structure requires at least one tier"}
	}
	var errs []string
	for i, tier := range tiers {
		level := i + 1
		if tier.MinAmount.IsNegative() {
			errs = append(errs, fmt.Sprintf("tier %d: minimum amount must be 0 or greater, got %s", level, tier.MinAmount))
		}
		if !tier.MaxAmount.GreaterThan(tier.MinAmount) {
			errs = append(errs, fmt.Sprintf("tier %d: maximum amount %s must be greater than minimum amount %s", level, tier.MaxAmount, tier.MinAmount))
		}
		if !validPercentage(tier.Rate) {
			errs = append(errs, fmt.Sprintf("tier %d: rate must be between 0 and 100, got %s", level, tier.Rate))
		}
	}
	for i := 0; i+1 < len(tiers); i++ {
		upper, nextMin := tiers[i].MaxAmount, tiers[i+1].MinAmount
		switch upper.Cmp(nextMin) {
		case -1:
			errs = append(errs, fmt.Sprintf("tiers %d and %d: gap between %s and %s", i+1, i+2, upper, nextMin))
		case 1:
			errs = append(errs, fmt.Sprintf("tiers %d and %d: overlap between %s and %s", i+1, i+2, nextMin, upper))
		}
	}
	return errs
}

func validPercentage(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}
