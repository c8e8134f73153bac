package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid contact token")
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// tokenKind prefixes the signed payload so tokens minted for other principals
// are never accepted as contact tokens.
const tokenKind = "prisoner_contact"

// Claims are the verified contents of a contact token.
type Claims struct {
	ContactID int64
	ExpiresAt time.Time
}

// TokenVerifier checks contact tokens minted by the sign-in service.
// A token is base64url(payload) "." base64url(HMAC-SHA256(payload)) with payload
// "prisoner_contact:<contactID>:<expiresUnix>".
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), now: time.Now}
}

// Verify validates signature, kind and expiry.
func (v *TokenVerifier) Verify(token string) (Claims, error) {
	encodedPayload, encodedSig, ok := strings.Cut(token, ".")
	if !ok || len(v.secret) == 0 {
		return Claims{}, ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil || !hmac.Equal(sig, v.sign(payload)) {
		return Claims{}, ErrInvalidToken
	}

	parts := strings.Split(string(payload), ":")
	if len(parts) != 3 || parts[0] != tokenKind {
		return Claims{}, ErrInvalidToken
	}
	contactID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || contactID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	expires, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{ContactID: contactID, ExpiresAt: time.Unix(expires, 0)}
	if !claims.ExpiresAt.After(v.now()) {
		return Claims{}, ErrTokenExpired
	}
	return claims, nil
}

func (v *TokenVerifier) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
