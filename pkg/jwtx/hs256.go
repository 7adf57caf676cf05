package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
	ErrExpired    = errors.New("jwtx: token expired")
)

// MinSecretBytes is the smallest signing secret we accept. Anything shorter
// than the HMAC-SHA256 block makes brute force cheaper than the hash.
const MinSecretBytes = 32

// Signer signs Claims into compact JWT strings.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256Keychain is both a Signer and a Verifier over one shared symmetric
// secret. The secret must come from durable configuration: regenerating it at
// process start would invalidate every outstanding token on restart.
type HS256Keychain struct {
	secret []byte
	issuer string
}

// NewHS256 builds a keychain from raw secret bytes.
func NewHS256(secret []byte, issuer string) (*HS256Keychain, error) {
	if len(secret) < MinSecretBytes {
		return nil, fmt.Errorf("jwtx: signing secret too short: %d bytes, need %d", len(secret), MinSecretBytes)
	}
	return &HS256Keychain{secret: secret, issuer: issuer}, nil
}

func (k *HS256Keychain) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (k *HS256Keychain) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(k.secret)
}

// Verify validates the JWT string and returns its parsed Claims.
//
// ErrExpired is reported only when the signature checked out and the sole
// problem is a past exp claim; every other defect (bad signature, wrong
// algorithm, garbage input) collapses to ErrInvalidSig or ErrMalformed so
// callers can't distinguish forgery modes.
func (k *HS256Keychain) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return k.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, ErrInvalidSig
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateIssuer(k.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
