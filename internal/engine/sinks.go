package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"rdsdash/internal/config"
	gh "rdsdash/internal/github"
	"rdsdash/internal/output"
	"rdsdash/internal/store"
)

// setupOutputManager builds the configured sinks. The history sink, when
// configured, is also returned so the run can report its history id.
func (e *Engine) setupOutputManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*output.Manager, *output.HistorySink, error) {
	outMgr := output.NewManager()
	var history *output.HistorySink
	add := func(s output.Sink, err error) error {
		if err != nil {
			return err
		}
		return outMgr.AddSink(s)
	}
	fail := func(err error) (*output.Manager, *output.HistorySink, error) {
		outMgr.Close()
		return nil, nil, err
	}

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := add(output.NewConsoleSink(e.Stdout, cfg.Output.ConsoleFormat, color.NoColor), nil); err != nil {
			return fail(err)
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		if err := add(output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)); err != nil {
			return fail(err)
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		if err := add(output.NewReportSink(cfg.Output.Report)); err != nil {
			return fail(err)
		}
	}

	// History Sink
	if cfg.Output.History != "" {
		st, err := store.Open(cfg.Output.History)
		if err != nil {
			return fail(fmt.Errorf("open history: %w", err))
		}
		hs, err := output.NewHistorySink(st, logger)
		if err != nil {
			st.Close()
			return fail(err)
		}
		if err := add(hs, nil); err != nil {
			return fail(err)
		}
		history = hs
	}

	// Google Sheets Sink
	if cfg.Sheets.Enabled {
		newSheets := e.newSheets
		if newSheets == nil {
			newSheets = googleSheets
		}
		api, err := newSheets(ctx, cfg, logger)
		if err != nil {
			return fail(fmt.Errorf("sheets: %w", err))
		}
		if err := add(output.NewSheetsSink(api, output.SheetsOptions{
			Key:          cfg.Sheets.Key,
			SummarySheet: cfg.Sheets.SummarySheet,
			DetailSheet:  cfg.Sheets.DetailSheet,
			DailySheet:   cfg.Sheets.DailySheet,
		}, logger)); err != nil {
			return fail(err)
		}
	}

	// GitHub Sink
	if cfg.GitHub.Repo != "" {
		newContents := e.newContents
		if newContents == nil {
			newContents = githubContents
		}
		api, err := newContents(ctx, cfg, logger)
		if err != nil {
			return fail(fmt.Errorf("github: %w", err))
		}
		owner, repo := cfg.RepoOwnerName()
		if err := add(output.NewGitHubSink(api, output.GitHubTarget{
			Owner:   owner,
			Repo:    repo,
			Path:    cfg.GitHub.Path,
			Branch:  cfg.GitHub.Branch,
			Message: cfg.GitHub.Message,
		}, logger)); err != nil {
			return fail(err)
		}
	}

	if outMgr.Len() == 0 {
		return fail(errNoSinks)
	}
	return outMgr, history, nil
}

func googleSheets(ctx context.Context, cfg *config.Config, logger *zap.Logger) (output.SheetsAPI, error) {
	return output.NewGoogleSheets(ctx, cfg.Sheets.CredentialPath, cfg.Sheets.Scopes, logger)
}

// githubContents resolves a token, checks the target repository is
// reachable, and returns its contents API.
func githubContents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (output.ContentsAPI, error) {
	token, source, err := gh.ResolveAuthToken(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve GitHub auth token: %w", err)
	}
	if token == "" {
		return nil, fmt.Errorf("GitHub auth token is required (set %s or GITHUB_TOKEN, or run 'gh auth login')", gh.TokenEnv)
	}
	logger.Debug("github token resolved", zap.String("source", string(source)))

	var opts []gh.Option
	if cfg.Runtime.Verbose {
		opts = append(opts, gh.WithLogger(logger))
	}
	client, err := gh.NewClient(ctx, token, opts...)
	if err != nil {
		return nil, err
	}

	owner, repo := cfg.RepoOwnerName()
	branch, err := client.DefaultBranch(ctx, owner, repo)
	if err != nil {
		return nil, errors.New(presentPublishError(err, cfg.Runtime.Verbose))
	}
	if cfg.GitHub.Branch == "" {
		logger.Debug("publishing to default branch", zap.String("branch", branch))
	}
	return client.Client.Repositories, nil
}
