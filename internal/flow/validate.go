package flow

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/jkaberg/skoda-hass/internal/skoda"
	"github.com/sirupsen/logrus"
)

// Validation outcome taxonomy. These are the only errors Validate returns,
// apart from context cancellation which passes through unchanged.
var (
	ErrCannotConnect = errors.New("cannot connect")
	ErrInvalidAuth   = errors.New("invalid auth")
	ErrUnknown       = errors.New("unknown error")
)

// Connector opens a session against the vehicle cloud. Implemented by
// *skoda.Client; tests substitute a fake.
type Connector interface {
	Connect(ctx context.Context, email, password string) error
}

// Validate checks the credentials with exactly one connect call. It does not
// retry and persists nothing; classifying the outcome is its whole job.
func Validate(ctx context.Context, client Connector, email, password string, logger *logrus.Logger) error {
	err := client.Connect(ctx, email, password)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Cancellation/timeout from the session propagates unchanged.
		return err
	case errors.Is(err, skoda.ErrAuthorizationFailed):
		return ErrInvalidAuth
	case isConnectionError(err):
		return ErrCannotConnect
	default:
		logger.WithError(err).Error("Unexpected error validating credentials")
		return ErrUnknown
	}
}

// isConnectionError covers the transport-level failures that mean the backend
// was never reached: DNS, dial, TLS handshake and friends all surface as
// net/url errors from the HTTP client.
func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
