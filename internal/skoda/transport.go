package skoda

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// newTransport returns the HTTP transport shared by all cloud API calls.
// Connection reuse matters here: a refresh fans out into several requests
// against the same host.
func newTransport() *http.Transport {
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
	}
}

// newHTTPClient builds the client used against the vehicle cloud.
func newHTTPClient(timeout time.Duration, logger *logrus.Logger) *http.Client {
	logger.WithField("timeout", timeout).Debug("Cloud HTTP client configured")
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(),
	}
}
