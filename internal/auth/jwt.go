package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/slotbook/backend/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the access token claims issued by Supabase Auth.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// KeySource resolves the public key for an asymmetrically signed token,
// usually by its "kid" header.
type KeySource interface {
	Keyfunc(token *jwt.Token) (interface{}, error)
}

// Verifier validates Supabase-issued access tokens: HS256 with the project
// secret, and RS256/ES256 with keys from a KeySource.
type Verifier struct {
	secret   []byte
	keys     KeySource
	audience string
	issuer   string
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithKeySource accepts asymmetrically signed tokens whose keys ks resolves.
func WithKeySource(ks KeySource) Option {
	return func(v *Verifier) { v.keys = ks }
}

// NewVerifier creates a verifier. An empty secret disables HS256; an empty
// issuer skips the "iss" check.
func NewVerifier(secret, audience, issuer string, opts ...Option) *Verifier {
	v := &Verifier{audience: audience, issuer: issuer}
	if secret != "" {
		v.secret = []byte(secret)
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Verifier) methods() []string {
	var m []string
	if v.secret != nil {
		m = append(m, jwt.SigningMethodHS256.Alg())
	}
	if v.keys != nil {
		m = append(m, jwt.SigningMethodRS256.Alg(), jwt.SigningMethodES256.Alg())
	}
	return m
}

func (v *Verifier) keyFor(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); ok {
		if v.secret == nil {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}
	if v.keys == nil {
		return nil, ErrInvalidToken
	}
	return v.keys.Keyfunc(t)
}

// Verify parses the token and returns the caller it identifies.
func (v *Verifier) Verify(tokenString string) (models.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods()),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, v.keyFor, opts...)
	if err != nil {
		return models.Identity{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return models.Identity{}, ErrInvalidToken
	}
	return models.Identity{UserID: userID, Email: claims.Email}, nil
}

// Sign issues an HS256 token the verifier accepts. Used by tooling and tests.
func (v *Verifier) Sign(id models.Identity, ttl time.Duration) (string, error) {
	if v.secret == nil {
		return "", errors.New("no signing secret configured")
	}
	now := time.Now()
	claims := Claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			Issuer:    v.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
