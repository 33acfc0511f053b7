package auth

import (
	"context"
	"os"
	"strings"
)

// DefaultTokenEnv is the environment variable read by EnvToken.
const DefaultTokenEnv = "HAGEL_TOKEN"

// TokenSource returns the bearer token for outgoing requests.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - An empty token with a nil error means "send no Authorization header".
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// EnvToken reads the token from an environment variable on every call.
type EnvToken struct {
	// Name is the variable name. Default: DefaultTokenEnv.
	Name string
}

// Token implements TokenSource.
func (e EnvToken) Token(context.Context) (string, error) {
	name := e.Name
	if name == "" {
		name = DefaultTokenEnv
	}
	return strings.TrimSpace(os.Getenv(name)), nil
}

// Chain returns the first non-empty token from its sources.
// An error from any source stops the chain.
type Chain []TokenSource

// Token implements TokenSource.
func (c Chain) Token(ctx context.Context) (string, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		tok, err := src.Token(ctx)
		if err != nil {
			return "", err
		}
		if tok != "" {
			return tok, nil
		}
	}
	return "", nil
}

// NoToken is a TokenSource that never yields a token.
func NoToken() TokenSource {
	return StaticToken("")
}

var (
	_ TokenSource = StaticToken("")
	_ TokenSource = EnvToken{}
	_ TokenSource = Chain(nil)
	_ TokenSource = TokenFunc(nil)
)
