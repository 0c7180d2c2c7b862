package alexa

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

// Platform requirements for the certificate chain URL presented with
// signed webhook requests.
const (
	certHost       = "s3.amazonaws.com"
	certPathPrefix = "/echo.api/"
	certPort       = "443"
)

// ValidateCertURL checks that a SignatureCertChainUrl has the shape the
// platform documents: https, the official S3 host, the /echo.api/ path,
// and port 443 if a port is given at all.
func ValidateCertURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse certificate url: %w", err)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("certificate url scheme must be https, got %q", u.Scheme)
	}
	if !strings.EqualFold(u.Hostname(), certHost) {
		return fmt.Errorf("certificate url host must be %s, got %q", certHost, u.Hostname())
	}
	if port := u.Port(); port != "" && port != certPort {
		return fmt.Errorf("certificate url port must be %s, got %q", certPort, port)
	}
	// Clean the path first so traversal tricks like /echo.api/../ fail.
	cleaned := path.Clean(u.Path)
	if !strings.HasPrefix(cleaned, certPathPrefix) {
		return fmt.Errorf("certificate url path must start with %s, got %q", certPathPrefix, u.Path)
	}
	return nil
}

// CheckTimestamp rejects requests whose timestamp falls outside the
// tolerance window around now, in either direction.
func CheckTimestamp(timestamp string, tolerance time.Duration, now time.Time) error {
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return fmt.Errorf("parse request timestamp: %w", err)
	}
	drift := now.Sub(ts)
	if drift < 0 {
		drift = -drift
	}
	if drift > tolerance {
		return fmt.Errorf("request timestamp outside tolerance: drift %s exceeds %s", drift, tolerance)
	}
	return nil
}
