package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across the payment workflow. Callers match these
// with errors.Is at the HTTP boundary to pick a response status.
var (
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrInvalidServiceType = errors.New("invalid service type")
	ErrUserNotFound       = errors.New("user not found")
	ErrPropertyNotFound   = errors.New("property not found")
	ErrPricingNotFound    = errors.New("no active pricing for service type")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrUnknownTransaction = errors.New("unknown transaction")
	ErrAlreadyReconciled  = errors.New("payment already reconciled")
	ErrMalformedCallback  = errors.New("malformed callback")
)

// ConfigurationError indicates missing provider credentials. It is raised
// before any network I/O so operators can tell misconfiguration apart from
// provider-side failures.
type ConfigurationError struct {
	Provider string
	Missing  []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s configuration incomplete: missing %s", e.Provider, strings.Join(e.Missing, ", "))
}

// GatewayError indicates the provider rejected a request or was unreachable.
type GatewayError struct {
	Provider string
	Code     string
	Message  string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s gateway error [%s]: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s gateway error: %s", e.Provider, e.Message)
}
