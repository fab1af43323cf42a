// Package errdefs defines the error kinds surfaced at the process boundary.
package errdefs

import "errors"

var (
	// ErrAuthentication marks missing or rejected credentials.
	// Fatal, raised before any enumeration.
	ErrAuthentication = errors.New("authentication failed")

	// ErrAPI marks a cloud management API failure.
	ErrAPI = errors.New("cloud api request failed")

	// ErrIngestion marks a transmission failure or rejection by the sink.
	ErrIngestion = errors.New("ingestion failed")
)

// IsAuthentication reports whether err is an authentication failure.
func IsAuthentication(err error) bool { return errors.Is(err, ErrAuthentication) }

// IsAPI reports whether err is a cloud API failure.
func IsAPI(err error) bool { return errors.Is(err, ErrAPI) }

// IsIngestion reports whether err is an ingestion failure.
func IsIngestion(err error) bool { return errors.Is(err, ErrIngestion) }
