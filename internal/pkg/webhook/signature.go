package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingHeaders   = errors.New("missing required webhook headers")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside allowed window")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// SignatureTolerance is the replay window for Polar deliveries.
const SignatureTolerance = 300 // seconds

const polarSecretPrefix = "whsec_"

// PolarSignatureHeaders carries the three Standard Webhooks headers a
// Polar delivery must present.
type PolarSignatureHeaders struct {
	ID        string // webhook-id
	Timestamp string // webhook-timestamp (unix seconds)
	Signature string // webhook-signature ("v1,<base64>" tokens, space separated)
}

// VerifyPolarSignature validates a Polar delivery per the Standard
// Webhooks scheme: HMAC-SHA256 over "{id}.{timestamp}.{body}" keyed with
// the base64-decoded shared secret. rawBody must be the unmodified
// request body; any reserialization invalidates the signature.
func VerifyPolarSignature(rawBody []byte, headers PolarSignatureHeaders, secret string, now time.Time) error {
	id := strings.TrimSpace(headers.ID)
	tsHeader := strings.TrimSpace(headers.Timestamp)
	sigHeader := strings.TrimSpace(headers.Signature)
	if id == "" || tsHeader == "" || sigHeader == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return ErrStaleTimestamp
	}
	skew := now.Unix() - ts
	if skew < -SignatureTolerance || skew > SignatureTolerance {
		return ErrStaleTimestamp
	}

	secretBytes, err := decodePolarSecret(secret)
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, secretBytes)
	mac.Write([]byte(id))
	mac.Write([]byte{'.'})
	mac.Write([]byte(tsHeader))
	mac.Write([]byte{'.'})
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	// The header may carry several signatures (after secret rotation);
	// any matching v1 candidate is enough.
	for _, candidate := range strings.Fields(sigHeader) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" || sig == "" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// decodePolarSecret strips the conventional "whsec_" prefix and decodes
// the base64 key material.
func decodePolarSecret(secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, polarSecretPrefix))
}

// VerifySepayAuth checks the static shared secret SePay sends in the
// Authorization header, in either "Apikey <key>" or "Bearer <key>" form.
func VerifySepayAuth(authorizationHeader, secret string) bool {
	header := strings.TrimSpace(authorizationHeader)
	if header == "" || secret == "" {
		return false
	}

	var token string
	switch {
	case strings.HasPrefix(header, "Apikey "):
		token = header[len("Apikey "):]
	case strings.HasPrefix(header, "Bearer "):
		token = header[len("Bearer "):]
	default:
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
