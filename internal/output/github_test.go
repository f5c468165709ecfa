package output

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-github/v81/github"

	"rdsdash/internal/snapshot"
)

type fakeContents struct {
	existing []byte // nil: file does not exist
	tooLarge bool   // served without content, like files over 1 MB
	sha      string
	getErr   error

	gotRef    string
	created   *github.RepositoryContentFileOptions
	updated   *github.RepositoryContentFileOptions
	updateErr error
}

func (f *fakeContents) GetContents(_ context.Context, _, _, _ string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error) {
	if opts != nil {
		f.gotRef = opts.Ref
	}
	if f.getErr != nil {
		return nil, nil, nil, f.getErr
	}
	if f.existing == nil {
		resp := &http.Response{StatusCode: http.StatusNotFound}
		return nil, nil, &github.Response{Response: resp}, &github.ErrorResponse{Response: resp, Message: "Not Found"}
	}
	if f.tooLarge {
		return &github.RepositoryContent{
			Encoding: github.Ptr("none"),
			Content:  github.Ptr(""),
			SHA:      github.Ptr(f.sha),
		}, nil, nil, nil
	}
	return &github.RepositoryContent{
		Encoding: github.Ptr("base64"),
		Content:  github.Ptr(base64.StdEncoding.EncodeToString(f.existing)),
		SHA:      github.Ptr(f.sha),
	}, nil, nil, nil
}

func (f *fakeContents) CreateFile(_ context.Context, _, _, _ string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error) {
	f.created = opts
	return &github.RepositoryContentResponse{}, nil, nil
}

func (f *fakeContents) UpdateFile(_ context.Context, _, _, _ string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error) {
	f.updated = opts
	return &github.RepositoryContentResponse{}, nil, f.updateErr
}

func encoded(t *testing.T, s *snapshot.Snapshot) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, s); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return buf.Bytes()
}

func newTestGitHubSink(t *testing.T, api ContentsAPI) *GitHubSink {
	t.Helper()
	s, err := NewGitHubSink(api, GitHubTarget{Owner: "mapaction", Repo: "rds-dashboard", Path: "data/export.json", Branch: "main"}, nil)
	if err != nil {
		t.Fatalf("NewGitHubSink failed: %v", err)
	}
	return s
}

func TestGitHubSink_CreatesMissingFile(t *testing.T) {
	api := &fakeContents{}
	snap := testSnapshot(t)
	if err := newTestGitHubSink(t, api).Write(context.Background(), snap); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if api.gotRef != "main" {
		t.Fatalf("GetContents ref = %q, want main", api.gotRef)
	}
	if api.created == nil || api.updated != nil {
		t.Fatalf("expected a create, got created=%v updated=%v", api.created, api.updated)
	}
	if !bytes.Equal(api.created.Content, encoded(t, snap)) {
		t.Fatalf("committed content differs from the JSON export")
	}
	if api.created.GetBranch() != "main" || api.created.GetMessage() != "Update RDS dashboard export" {
		t.Fatalf("unexpected commit options: branch=%q message=%q", api.created.GetBranch(), api.created.GetMessage())
	}
	if api.created.SHA != nil {
		t.Fatalf("create must not carry a SHA")
	}
}

func TestGitHubSink_UpdatesChangedFile(t *testing.T) {
	api := &fakeContents{existing: []byte("{}\n"), sha: "abc123"}
	if err := newTestGitHubSink(t, api).Write(context.Background(), testSnapshot(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if api.updated == nil || api.created != nil {
		t.Fatalf("expected an update")
	}
	if api.updated.GetSHA() != "abc123" {
		t.Fatalf("update SHA = %q, want abc123", api.updated.GetSHA())
	}
}

func TestGitHubSink_UnchangedIsNoop(t *testing.T) {
	earlier := testSnapshot(t)
	earlier.Meta.ExportDatetime = "2021-02-28T06:00:00.000"

	tests := []struct {
		name     string
		existing []byte
	}{
		{name: "identical bytes", existing: encoded(t, testSnapshot(t))},
		{name: "earlier run with the same results", existing: encoded(t, earlier)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeContents{existing: tt.existing, sha: "abc123"}
			if err := newTestGitHubSink(t, api).Write(context.Background(), testSnapshot(t)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if api.created != nil || api.updated != nil {
				t.Fatalf("unchanged export must not be committed")
			}
		})
	}
}

func TestGitHubSink_CommitsChangedResults(t *testing.T) {
	prev := testSnapshot(t)
	prev.Meta.AppVersion = "1.2.2"

	tests := []struct {
		name string
		api  *fakeContents
	}{
		{name: "different app version", api: &fakeContents{existing: encoded(t, prev), sha: "abc123"}},
		{name: "not an export", api: &fakeContents{existing: []byte("[]\n"), sha: "abc123"}},
		{name: "too large to compare", api: &fakeContents{existing: encoded(t, testSnapshot(t)), tooLarge: true, sha: "abc123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := newTestGitHubSink(t, tt.api).Write(context.Background(), testSnapshot(t)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if tt.api.updated == nil || tt.api.updated.GetSHA() != "abc123" {
				t.Fatalf("expected an update of abc123, got %+v", tt.api.updated)
			}
		})
	}
}

func TestGitHubSink_Errors(t *testing.T) {
	t.Run("get fails", func(t *testing.T) {
		api := &fakeContents{getErr: errors.New("bad credentials")}
		err := newTestGitHubSink(t, api).Write(context.Background(), testSnapshot(t))
		if err == nil || !strings.Contains(err.Error(), "get mapaction/rds-dashboard:data/export.json: bad credentials") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("update fails", func(t *testing.T) {
		api := &fakeContents{existing: []byte("old"), sha: "s", updateErr: errors.New("conflict")}
		err := newTestGitHubSink(t, api).Write(context.Background(), testSnapshot(t))
		if err == nil || !strings.Contains(err.Error(), "conflict") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		api := &fakeContents{}
		err := newTestGitHubSink(t, api).Write(context.Background(), unsupportedSnapshot(t))
		if !errors.Is(err, snapshot.ErrUnsupportedVersion) {
			t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
		}
		if api.created != nil {
			t.Fatalf("nothing should be committed")
		}
	})
}

func TestNewGitHubSink_Validation(t *testing.T) {
	if _, err := NewGitHubSink(&fakeContents{}, GitHubTarget{Owner: "o", Path: "p"}, nil); err == nil {
		t.Fatalf("expected error for missing repo")
	}
	if _, err := NewGitHubSink(&fakeContents{}, GitHubTarget{Owner: "o", Repo: "r"}, nil); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
