package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrOracleUnavailable covers transport failures, non-2xx statuses and
	// API-reported errors from the completion service.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrMalformedResponse means the service answered but the body could not
	// be decoded.
	ErrMalformedResponse = errors.New("oracle returned a malformed response")
)

func unavailable(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, ErrOracleUnavailable, err)
}

func unavailablef(provider string, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", provider, ErrOracleUnavailable, fmt.Sprintf(format, args...))
}

func malformed(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, ErrMalformedResponse, err)
}
