// Package middleware provides HTTP middleware for the skill webhook.
package middleware

import (
	"net/http"

	"github.com/ashureev/dogtrainer/internal/alexa"
)

// Platform signature headers attached to every genuine webhook call.
const (
	SignatureHeader    = "Signature"
	CertChainURLHeader = "SignatureCertChainUrl"
)

// RequireSignatureHeaders rejects requests missing the platform's signature
// headers or carrying a certificate chain URL outside the allowed shape.
// Skipped in development so local tooling can post test envelopes.
func RequireSignatureHeaders(isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isDev {
				next.ServeHTTP(w, r)
				return
			}

			certURL := r.Header.Get(CertChainURLHeader)
			if r.Header.Get(SignatureHeader) == "" || certURL == "" {
				http.Error(w, `{"error":"missing signature headers"}`, http.StatusUnauthorized)
				return
			}
			if err := alexa.ValidateCertURL(certURL); err != nil {
				http.Error(w, `{"error":"invalid certificate chain url"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
