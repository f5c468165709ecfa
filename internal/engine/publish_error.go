package engine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v81/github"
	"google.golang.org/api/googleapi"
)

// presentPublishError renders a destination failure for the log. Unless
// verbose, API errors are reduced to status and message so request URLs
// and spreadsheet keys stay out of the output.
func presentPublishError(err error, verbose bool) string {
	if err == nil {
		return "unknown error"
	}
	full := err.Error()
	if verbose {
		return full
	}

	var msgs []string

	var er *github.ErrorResponse
	if errors.As(err, &er) {
		msg := strings.TrimSpace(er.Message)
		if msg == "" {
			msg = "GitHub API request failed"
		}
		if er.Response != nil {
			status := fmt.Sprintf("%d %s", er.Response.StatusCode, http.StatusText(er.Response.StatusCode))
			msgs = append(msgs, fmt.Sprintf("GitHub API request failed (%s): %s", status, msg))
		} else {
			msgs = append(msgs, fmt.Sprintf("GitHub API request failed: %s", msg))
		}
	}

	var ge *googleapi.Error
	if errors.As(err, &ge) {
		msg := strings.TrimSpace(ge.Message)
		if msg == "" {
			msg = "Google API request failed"
		}
		msgs = append(msgs, fmt.Sprintf("Google API request failed (%d %s): %s", ge.Code, http.StatusText(ge.Code), msg))
	}

	if len(msgs) > 0 {
		return strings.Join(msgs, "; ")
	}

	// Fallback: best-effort scrub of a leading request line.
	if scrubbed := scrubRequestFromErrorString(strings.TrimSpace(full)); scrubbed != "" {
		return scrubbed
	}
	return full
}

func scrubRequestFromErrorString(s string) string {
	// Typical go-github error format:
	//   GET https://api.github.com/...: 403 Some message. [..]
	// Drop the leading "GET https://...: " part.
	methods := []string{"GET ", "POST ", "PUT ", "PATCH ", "DELETE "}
	for _, m := range methods {
		if strings.HasPrefix(s, m) {
			if i := strings.Index(s, "https://"); i >= 0 {
				if j := strings.Index(s[i:], ": "); j >= 0 {
					return strings.TrimSpace(s[i+j+2:])
				}
			}
			if j := strings.Index(s, ": "); j >= 0 {
				return strings.TrimSpace(s[j+2:])
			}
			break
		}
	}
	return ""
}
