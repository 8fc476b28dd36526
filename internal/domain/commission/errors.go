package commission

import (
	"errors"
	"fmt"
)

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrFinancialPeriodNotFound = errors.New("financial period not found")
	ErrUnknownPolicy           = errors.New("unknown commission structure type")
)

// ProviderError marks a failed read from the employee directory or the
// financial period provider.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("commission %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
