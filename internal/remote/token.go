package remote

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token attached to every API request.
// Returning an empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() (string, error)
}

// StaticTokenSource holds a fixed token. When the token is a JWT, its expiry
// claim is checked before each use so an already-dead session fails fast
// with ErrSessionExpired instead of a round trip that ends in a 401. Opaque
// (non-JWT) tokens are passed through untouched.
type StaticTokenSource struct {
	token  string
	parser *jwt.Parser
	now    func() time.Time
}

func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{
		token:  token,
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

func (s *StaticTokenSource) Token() (string, error) {
	if s.token == "" {
		return "", nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := s.parser.ParseUnverified(s.token, claims); err != nil {
		// Not a JWT; nothing to inspect.
		return s.token, nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return s.token, nil
	}
	if s.now().After(exp.Time) {
		return "", ErrSessionExpired
	}

	return s.token, nil
}

// NoToken is a TokenSource for unauthenticated clients
type NoToken struct{}

func (NoToken) Token() (string, error) { return "", nil }
