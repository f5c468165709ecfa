package engine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-github/v81/github"
	"google.golang.org/api/googleapi"
)

func TestPresentPublishError_GitHub(t *testing.T) {
	err := fmt.Errorf("write *output.GitHubSink: %w", &github.ErrorResponse{
		Response: &http.Response{StatusCode: 403, Status: "403 Forbidden"},
		Message:  "Resource not accessible by integration",
	})

	got := presentPublishError(err, false)
	if want := "GitHub API request failed (403 Forbidden): Resource not accessible by integration"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if full := presentPublishError(err, true); full != err.Error() {
		t.Fatalf("verbose should return the full error, got %q", full)
	}
}

func TestPresentPublishError_JoinedDestinations(t *testing.T) {
	err := errors.Join(
		fmt.Errorf("write *output.SheetsSink: %w", &googleapi.Error{Code: 404, Message: "Requested entity was not found."}),
		fmt.Errorf("write *output.GitHubSink: %w", &github.ErrorResponse{Response: &http.Response{StatusCode: 409}, Message: "sha mismatch"}),
	)

	got := presentPublishError(err, false)
	for _, want := range []string{
		"GitHub API request failed (409 Conflict): sha mismatch",
		"Google API request failed (404 Not Found): Requested entity was not found.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestPresentPublishError_PlainError(t *testing.T) {
	err := errors.New("failed to write output file: disk full")
	if got := presentPublishError(err, false); got != err.Error() {
		t.Fatalf("expected plain error unchanged, got %q", got)
	}
	if got := presentPublishError(nil, false); got != "unknown error" {
		t.Fatalf("unexpected nil presentation %q", got)
	}
}

func TestScrubRequestFromErrorString_StripsURLPrefix(t *testing.T) {
	s := "PUT https://api.github.com/repos/mapaction/rds/contents/export.json: 409 sha mismatch []"
	if want, got := "409 sha mismatch []", scrubRequestFromErrorString(s); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := scrubRequestFromErrorString("no request here"); got != "" {
		t.Fatalf("expected empty scrub, got %q", got)
	}
}
