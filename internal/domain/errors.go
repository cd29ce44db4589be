package domain

import "fmt"

// UnsupportedProviderError reports a provider id absent from the registry.
// Never retried.
type UnsupportedProviderError struct {
	ID        string
	Available []string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q (available: %v)", e.ID, e.Available)
}

// DependencyMissingError reports a backend whose client dependency cannot be
// used (unreachable local daemon, absent client wiring). Providers in this
// state are excluded from failover candidate selection.
type DependencyMissingError struct {
	ID     string
	Reason string
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("provider %s dependency unavailable: %s", e.ID, e.Reason)
}

// ConstructionError wraps any other adapter construction failure (missing
// secret, bad endpoint). During failover it means "try the next candidate".
type ConstructionError struct {
	ID  string
	Err error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construct provider %s: %v", e.ID, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// QuotaError marks a failure classified as quota/rate-limit exhaustion.
// It is classification context only: the wrapped error keeps the original
// message intact so callers can still inspect the raw text.
type QuotaError struct {
	Provider string
	Err      error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exhausted on %s: %v", e.Provider, e.Err)
}

func (e *QuotaError) Unwrap() error { return e.Err }
