package auth

import (
	"context"
	"errors"
	"testing"
)

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("  abc \n").Token(context.Background())
	if err != nil || tok != "abc" {
		t.Fatalf("Token() = %q, %v", tok, err)
	}
}

func TestEnvToken(t *testing.T) {
	t.Setenv("HAGEL_TEST_TOKEN", "from-env")

	tok, _ := EnvToken{Name: "HAGEL_TEST_TOKEN"}.Token(context.Background())
	if tok != "from-env" {
		t.Errorf("Token() = %q, want from-env", tok)
	}

	t.Setenv(DefaultTokenEnv, "default-env")
	tok, _ = EnvToken{}.Token(context.Background())
	if tok != "default-env" {
		t.Errorf("Token() = %q, want default-env", tok)
	}
}

func TestChain(t *testing.T) {
	boom := errors.New("keychain locked")

	tests := []struct {
		name    string
		chain   Chain
		want    string
		wantErr error
	}{
		{name: "empty chain", chain: nil, want: ""},
		{name: "first non-empty wins", chain: Chain{NoToken(), StaticToken("b"), StaticToken("c")}, want: "b"},
		{name: "nil sources skipped", chain: Chain{nil, StaticToken("a")}, want: "a"},
		{
			name: "error stops chain",
			chain: Chain{
				TokenFunc(func(context.Context) (string, error) { return "", boom }),
				StaticToken("never"),
			},
			wantErr: boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.chain.Token(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Token() = %q, want %q", got, tt.want)
			}
		})
	}
}
