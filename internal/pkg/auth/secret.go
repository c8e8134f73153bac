package auth

import "crypto/subtle"

// SecretVerifier compares a presented shared secret in constant time.
// An empty configured secret rejects everything.
type SecretVerifier struct {
	secret []byte
}

func (v *SecretVerifier) Verify(secret string) bool {
	if len(v.secret) == 0 || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare(v.secret, []byte(secret)) == 1
}

// StaffVerifier checks the token sent by fulfilment staff tools.
type StaffVerifier struct {
	*SecretVerifier
}

func NewStaffVerifier(token string) *StaffVerifier {
	return &StaffVerifier{&SecretVerifier{secret: []byte(token)}}
}

// WebhookVerifier checks the secret Telegram echoes on every webhook call.
type WebhookVerifier struct {
	*SecretVerifier
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{&SecretVerifier{secret: []byte(secret)}}
}
