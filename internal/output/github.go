package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v81/github"
	"go.uber.org/zap"

	"rdsdash/internal/snapshot"
)

// ContentsAPI is the subset of the repository contents API used to publish
// the export. *github.RepositoriesService satisfies it.
type ContentsAPI interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	CreateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
}

// GitHubTarget is the file the export is committed to.
type GitHubTarget struct {
	Owner   string
	Repo    string
	Path    string
	Branch  string // empty selects the default branch
	Message string
}

// GitHubSink commits the JSON export to a repository file. A run whose
// export differs from the committed one only in meta.export_datetime makes
// no commit.
type GitHubSink struct {
	api    ContentsAPI
	target GitHubTarget
	logger *zap.Logger
}

func NewGitHubSink(api ContentsAPI, target GitHubTarget, logger *zap.Logger) (*GitHubSink, error) {
	if api == nil {
		return nil, fmt.Errorf("github client must not be nil")
	}
	if target.Owner == "" || target.Repo == "" {
		return nil, fmt.Errorf("github repository required")
	}
	if target.Path == "" {
		return nil, fmt.Errorf("github path required")
	}
	if target.Message == "" {
		target.Message = "Update RDS dashboard export"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitHubSink{api: api, target: target, logger: logger}, nil
}

func (s *GitHubSink) Write(ctx context.Context, snap *snapshot.Snapshot) error {
	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, snap); err != nil {
		return err
	}
	body := buf.Bytes()
	t := s.target

	var getOpts *github.RepositoryContentGetOptions
	if t.Branch != "" {
		getOpts = &github.RepositoryContentGetOptions{Ref: t.Branch}
	}
	current, _, _, err := s.api.GetContents(ctx, t.Owner, t.Repo, t.Path, getOpts)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("get %s/%s:%s: %w", t.Owner, t.Repo, t.Path, err)
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(t.Message),
		Content: body,
	}
	if t.Branch != "" {
		opts.Branch = github.Ptr(t.Branch)
	}

	if current == nil {
		if _, _, err := s.api.CreateFile(ctx, t.Owner, t.Repo, t.Path, opts); err != nil {
			return fmt.Errorf("create %s/%s:%s: %w", t.Owner, t.Repo, t.Path, err)
		}
		s.logger.Info("export committed", zap.String("repo", t.Owner+"/"+t.Repo), zap.String("path", t.Path), zap.Bool("created", true))
		return nil
	}

	// Files over 1 MB come back without content (encoding "none"); they
	// are always rewritten.
	if current.GetEncoding() != "none" {
		existing, err := current.GetContent()
		if err != nil {
			return fmt.Errorf("decode %s/%s:%s: %w", t.Owner, t.Repo, t.Path, err)
		}
		if sameExport([]byte(existing), snap, body) {
			s.logger.Info("export unchanged, nothing to commit", zap.String("repo", t.Owner+"/"+t.Repo), zap.String("path", t.Path))
			return nil
		}
	}

	opts.SHA = github.Ptr(current.GetSHA())
	if _, _, err := s.api.UpdateFile(ctx, t.Owner, t.Repo, t.Path, opts); err != nil {
		return fmt.Errorf("update %s/%s:%s: %w", t.Owner, t.Repo, t.Path, err)
	}
	s.logger.Info("export committed", zap.String("repo", t.Owner+"/"+t.Repo), zap.String("path", t.Path), zap.Bool("created", false))
	return nil
}

// sameExport reports whether existing is the export of snap apart from its
// export_datetime. body is snap encoded.
func sameExport(existing []byte, snap *snapshot.Snapshot, body []byte) bool {
	if bytes.Equal(existing, body) {
		return true
	}
	prev, err := snapshot.Decode(bytes.NewReader(existing))
	if err != nil {
		return false
	}
	prev.Meta.ExportDatetime = snap.Meta.ExportDatetime
	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, prev); err != nil {
		return false
	}
	return bytes.Equal(buf.Bytes(), body)
}

func (s *GitHubSink) Close() error {
	return nil
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
