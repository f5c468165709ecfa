package github

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

type AuthTokenSource string

// TokenEnv holds a token dedicated to publishing the dashboard export,
// typically a fine-grained token limited to the data repository.
const TokenEnv = "RDSDASH_GITHUB_TOKEN"

const (
	AuthTokenSourceExplicit AuthTokenSource = "explicit"
	AuthTokenSourceAppEnv   AuthTokenSource = "env:" + TokenEnv
	AuthTokenSourceEnv      AuthTokenSource = "env:GITHUB_TOKEN"
	AuthTokenSourceGitHubCL AuthTokenSource = "gh"
)

// envTokenSources are consulted in order, after an explicit token.
var envTokenSources = []struct {
	env    string
	source AuthTokenSource
}{
	{env: TokenEnv, source: AuthTokenSourceAppEnv},
	{env: "GITHUB_TOKEN", source: AuthTokenSourceEnv},
}

// ghTimeout bounds `gh auth token` when the caller set no deadline.
const ghTimeout = 5 * time.Second

// ResolveAuthToken finds the token the GitHub exporter commits with:
// provided, then RDSDASH_GITHUB_TOKEN, then GITHUB_TOKEN, then
// `gh auth token -h github.com`. An empty token with a nil error means no
// source had one. The token is never logged.
func ResolveAuthToken(ctx context.Context, provided string) (token string, source AuthTokenSource, err error) {
	if tok := strings.TrimSpace(provided); tok != "" {
		return tok, AuthTokenSourceExplicit, nil
	}
	for _, s := range envTokenSources {
		if tok := strings.TrimSpace(os.Getenv(s.env)); tok != "" {
			return tok, s.source, nil
		}
	}

	tok, err := tokenFromGitHubCLI(ctx)
	if err != nil || tok == "" {
		return "", "", err
	}
	return tok, AuthTokenSourceGitHubCL, nil
}

// tokenFromGitHubCLI asks an installed and logged-in gh for its token. A
// missing gh, or one that is not logged in, yields "" and no error; only
// cancellation and malformed output are errors.
func tokenFromGitHubCLI(ctx context.Context) (string, error) {
	if _, err := exec.LookPath("gh"); err != nil {
		return "", nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ghTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "gh", "auth", "token", "-h", "github.com")
	cmd.Env = ghEnv(os.Environ())
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// gh output may echo credentials; it is dropped.
		return "", nil
	}

	tok := strings.TrimSpace(string(out))
	if strings.ContainsAny(tok, " \t\n\r") {
		return "", errors.New("invalid token returned by gh: contains whitespace")
	}
	return tok, nil
}

// ghEnv returns environ with GH_PAGER forced to cat, so gh never waits on
// a pager during an unattended export.
func ghEnv(environ []string) []string {
	env := make([]string, 0, len(environ)+1)
	for _, entry := range environ {
		if !strings.HasPrefix(entry, "GH_PAGER=") {
			env = append(env, entry)
		}
	}
	return append(env, "GH_PAGER=cat")
}
