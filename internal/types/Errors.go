package types

import "errors"

// Error taxonomy for census queries. A query either completes fully or fails
// with one of these; unpriceable stages return zero amounts instead of erroring.
var (
	// ErrInvalidHolder is returned for the zero address.
	ErrInvalidHolder = errors.New("holder cannot be the zero address")

	// ErrQuantityTooLarge is returned when a caller-supplied quantity exceeds
	// MaxQuantity.
	ErrQuantityTooLarge = errors.New("quantity exceeds maximum allowed")

	// ErrConfigurationMismatch indicates a pool's coin at the expected index is
	// not the configured base token. A wiring error, never recoverable: pricing
	// the pool anyway would silently misvalue the whole family.
	ErrConfigurationMismatch = errors.New("pool coin does not match configured base token")

	// ErrProviderUnavailable wraps a failed external balance, price, or quote
	// call. Fatal for the query; there is no retry and no fallback value.
	ErrProviderUnavailable = errors.New("external provider call failed")
)
