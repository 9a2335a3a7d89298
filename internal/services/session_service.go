package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// SessionService signs and verifies self-contained session tokens.
// A token is `username|expiry_ms_unix|hex_hmac_signature`; validity is
// re-derived on every request, never looked up, and there is no
// revocation list: a leaked token stays valid until expiry.
type SessionService interface {
	Create(username string) string
	// Validate returns the username carried by a valid token. Every
	// failure mode (absent, malformed, expired, bad signature) is
	// reported identically as ok=false; callers cannot tell which check
	// failed, and an invalid session is a normal outcome, not an error.
	Validate(token string) (username string, ok bool)
}

type sessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(secret []byte, ttl time.Duration) SessionService {
	return &sessionService{secret: secret, ttl: ttl, now: time.Now}
}

func (s *sessionService) Create(username string) string {
	expiry := s.now().Add(s.ttl).UnixMilli()
	payload := username + "|" + strconv.FormatInt(expiry, 10)
	return payload + "|" + s.sign(payload)
}

func (s *sessionService) Validate(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	parts := strings.Split(token, "|")
	if len(parts) != 3 {
		return "", false
	}
	username, expiryStr, sig := parts[0], parts[1], parts[2]

	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return "", false
	}
	if s.now().UnixMilli() > expiry {
		return "", false
	}

	expected := s.sign(username + "|" + expiryStr)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return "", false
	}

	return username, true
}

func (s *sessionService) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
