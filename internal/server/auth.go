package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer = "moodmusic"

	// DefaultTokenTTL is the lifetime of session tokens.
	DefaultTokenTTL = 24 * time.Hour
	stateTTL        = 10 * time.Minute

	purposeSession = "session"
	purposeState   = "oauth_state"
)

type claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 session tokens and OAuth state tokens.
//
// A state token is bound to one provider through its audience, so a Spotify state cannot complete a Google link.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticator creates an [Authenticator]. A non-positive ttl selects [DefaultTokenTTL].
func NewAuthenticator(secret string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: jwt secret is required", shared.ErrMissingConfig)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// IssueToken signs a session token for userID.
func (a *Authenticator) IssueToken(userID string) (string, error) {
	return a.sign(userID, purposeSession, a.ttl)
}

// ParseToken verifies a session token and returns its user id.
func (a *Authenticator) ParseToken(token string) (string, error) {
	c, err := a.parse(token, purposeSession)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	return c.Subject, nil
}

// IssueState signs the OAuth state carried through the provider consent page.
func (a *Authenticator) IssueState(userID string, provider models.Provider) (string, error) {
	return a.sign(userID, purposeState, stateTTL, string(provider))
}

// ParseState verifies a state token for provider and returns the user id that started the link.
func (a *Authenticator) ParseState(state string, provider models.Provider) (string, error) {
	c, err := a.parse(state, purposeState, jwt.WithAudience(string(provider)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidState, err)
	}
	return c.Subject, nil
}

func (a *Authenticator) sign(subject, purpose string, ttl time.Duration, audience ...string) (string, error) {
	now := a.now()
	c := claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if len(audience) > 0 {
		c.Audience = audience
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (a *Authenticator) parse(token, purpose string, opts ...jwt.ParserOption) (*claims, error) {
	if token == "" {
		return nil, errors.New("token is empty")
	}

	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)

	var c claims
	if _, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return a.secret, nil }, opts...); err != nil {
		return nil, err
	}
	if c.Purpose != purpose {
		return nil, fmt.Errorf("token purpose %q is not %q", c.Purpose, purpose)
	}
	if c.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &c, nil
}

// HashPassword hashes a password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// ComparePassword reports whether password matches hash.
func ComparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type userIDKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID returns the authenticated user id, or "" outside [Authenticator.Require].
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
