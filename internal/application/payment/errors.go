package payment

import "fmt"

// ValidationError reports customer or payment input that failed local
// checks. Raised before any backend call; the caller can fix the input
// and retry.
type ValidationError struct {
	Subject string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Subject, e.Reason)
}

// CapabilityError reports an operation invoked on a service instance that
// was not configured with the required collaborator. Not recoverable
// without reconfiguration.
type CapabilityError struct {
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("payment service does not support %s", e.Capability)
}

// ConfigurationError reports a call that cannot proceed with the current
// deployment configuration, e.g. recurring setup without a resolvable
// customer email or a missing plan id.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "payment configuration: " + e.Reason
}
