package shared

import (
	"net/http"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"printerp/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]ValidationIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{
		Field:  field,
		Reason: reason,
	})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

func (v *Validator) Period(field, raw string) (string, bool) {
	period, err := ParsePeriod(raw)
	if err != nil {
		v.Add(field, err.Error())
		return "", false
	}
	return period, true
}

// Amount parses an optional decimal string; empty means zero.
func (v *Validator) Amount(field, raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		v.Add(field, "must be a decimal number")
		return decimal.Zero
	}
	return amount
}

func (v *Validator) NonNegative(field string, amount decimal.Decimal) {
	if amount.IsNegative() {
		v.Add(field, "must be 0 or greater")
	}
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []ValidationIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]ValidationIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}
