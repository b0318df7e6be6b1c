package credentials

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the opaque authentication material attached to every outbound
// request. The pipeline is agnostic to the concrete scheme; the two forms the
// control plane accepts are a username/password pair and a bearer session
// token.
type Credential interface {
	// Apply attaches the credential to an outbound request.
	Apply(req *http.Request)
	// Identity returns who the credential authenticates, for display only.
	Identity() string
}

type Basic struct {
	Username string
	Password string
}

func NewBasic(username, password string) *Basic {
	return &Basic{
		Username: username,
		Password: password,
	}
}

func (c *Basic) Apply(req *http.Request) {
	req.SetBasicAuth(c.Username, c.Password)
}

func (c *Basic) Identity() string {
	return c.Username
}

type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Email        string
}

func NewToken(accessToken, refreshToken, email string, expiresAt time.Time) *Token {
	return &Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Email:        email,
	}
}

func (c *Token) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
}

func (c *Token) Identity() string {
	if c.Email != "" {
		return c.Email
	}

	subject, _ := c.claimString("sub")

	return subject
}

// Expired reports whether the token is past its expiry. Tokens with no known
// expiry are treated as live; the server has the final word either way.
func (c *Token) Expired(now time.Time) bool {
	expiry := c.ExpiresAt
	if expiry.IsZero() {
		expiry = c.claimExpiry()
	}

	if expiry.IsZero() {
		return false
	}

	return now.After(expiry)
}

// claimExpiry reads the exp claim without verifying the signature. The client
// never verifies tokens, it only inspects them for display and expiry hints.
func (c *Token) claimExpiry() time.Time {
	claims := c.claims()
	if claims == nil {
		return time.Time{}
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}
	}

	return expiry.Time
}

func (c *Token) claimString(name string) (string, bool) {
	claims := c.claims()
	if claims == nil {
		return "", false
	}

	value, ok := claims[name].(string)

	return value, ok
}

func (c *Token) claims() jwt.MapClaims {
	claims := jwt.MapClaims{}

	parser := jwt.NewParser()

	_, _, err := parser.ParseUnverified(c.AccessToken, claims)
	if err != nil {
		return nil
	}

	return claims
}
