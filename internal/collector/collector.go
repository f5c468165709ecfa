// Package collector reads validation verdicts out of Crash Move Folders.
//
// A Crash Move Folder (CMF) is the shared folder of one operation. Its
// event_description.json names the operation and points at a CMF
// description, which in turn locates the MapChef product outputs and the
// planned layer list.
package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rdsdash/internal/countries"
	"rdsdash/internal/records"
)

// Options configures a Collector.
type Options struct {
	// Paths are the operation folders, relative to the FS root.
	Paths []string

	// ProductID is the MapChef product holding every layer. Defaults to
	// DefaultProductID.
	ProductID string

	Filter Filter

	// Concurrency bounds parallel folder reads. Values below 1 mean 1.
	Concurrency int
}

// Collector turns Crash Move Folders into raw records.
type Collector struct {
	fsys   fs.FS
	opts   Options
	logger *zap.Logger

	// countryName is countries.Name, swappable in tests.
	countryName func(string) (string, error)
}

func New(fsys fs.FS, opts Options, logger *zap.Logger) *Collector {
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{fsys: fsys, opts: opts, logger: logger, countryName: countries.Name}
}

// Skipped records an operation folder left out of the run.
type Skipped struct {
	Path   string
	Reason error
}

// Result is the outcome of one collection.
type Result struct {
	// Operations and Records are in configured folder order.
	Operations []records.Operation
	Records    []records.RawRecord

	// Countries maps ISO3 codes of the collected operations to names.
	Countries map[string]string

	Skipped  []Skipped
	Excluded []string
}

// OperationResult is what one Crash Move Folder yields.
type OperationResult struct {
	Operation records.Operation
	Records   []records.RawRecord

	// Product is the MapChef output read, nil when none existed and the
	// planned layers were used.
	Product *Product
}

// Collect reads every configured operation folder. Folders that are missing
// or do not describe a valid operation are skipped with a warning; any other
// failure, or cancellation, aborts the whole collection so no partial result
// is ever returned.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	paths := c.opts.Paths
	results := make([]*OperationResult, len(paths))
	skipped := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := c.ReadOperation(gctx, p)
			if err != nil {
				if isSkippable(err) {
					skipped[i] = err
					return nil
				}
				return fmt.Errorf("operation %s: %w", p, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Result{Countries: make(map[string]string)}
	seen := make(map[string]string, len(paths))
	for i, res := range results {
		p := paths[i]
		if skipped[i] != nil {
			c.logger.Warn("ignoring operation", zap.String("path", p), zap.Error(skipped[i]))
			out.Skipped = append(out.Skipped, Skipped{Path: p, Reason: skipped[i]})
			continue
		}
		op := res.Operation
		if !c.opts.Filter.Allows(op.ID, p) {
			c.logger.Debug("operation excluded by filter", zap.String("operation", op.ID), zap.String("path", p))
			out.Excluded = append(out.Excluded, op.ID)
			continue
		}
		if prev, dup := seen[op.ID]; dup {
			return nil, fmt.Errorf("operation id %q is used by both %s and %s", op.ID, prev, p)
		}
		seen[op.ID] = p

		out.Operations = append(out.Operations, op)
		out.Records = append(out.Records, res.Records...)
		out.Countries[op.AffectedCountryISO3] = op.AffectedCountryName
	}

	c.logger.Info("collection finished",
		zap.Int("operations", len(out.Operations)),
		zap.Int("records", len(out.Records)),
		zap.Int("skipped", len(out.Skipped)),
		zap.Int("excluded", len(out.Excluded)),
	)
	return out, nil
}

// ReadOperation reads a single Crash Move Folder.
func (c *Collector) ReadOperation(ctx context.Context, dir string) (*OperationResult, error) {
	dir = strings.Trim(path.Clean(strings.ReplaceAll(dir, `\`, "/")), "/")
	if !fs.ValidPath(dir) {
		return nil, fmt.Errorf("%w: %q is not a valid folder path", ErrOperationInvalid, dir)
	}

	cmf, err := readCrashMoveFolder(c.fsys, dir)
	if err != nil {
		return nil, err
	}

	iso3 := countries.Normalize(cmf.Event.AffectedCountryISO3)
	name, err := c.countryName(iso3)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOperationInvalid, dir, err)
	}
	op := records.Operation{
		AffectedCountryISO3: iso3,
		AffectedCountryName: name,
		ID:                  cmf.Event.OperationID,
		Name:                strings.TrimSpace(cmf.Event.OperationName),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := c.logger.With(zap.String("operation", op.ID))
	res := &OperationResult{Operation: op}

	product, err := latestProduct(c.fsys, path.Join(cmf.MapProjects, c.opts.ProductID))
	switch {
	case err == nil:
		layers, err := product.PrincipalLayers()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOperationInvalid, err)
		}
		log.Debug("read mapchef output",
			zap.String("file", product.File),
			zap.String("mapnumber", product.MapNumber),
			zap.String("version", product.Version.String()),
			zap.Int("layers", len(layers)),
		)
		res.Product = product
		for _, l := range layers {
			res.Records = append(res.Records, records.NewRecord(op.ID, strings.TrimSpace(l.Name), l.Result()))
		}
	case errors.Is(err, ErrNoMapChefOutput), errors.Is(err, fs.ErrNotExist):
		names, err := plannedLayers(c.fsys, cmf.LayerProperties)
		if err != nil {
			return nil, fmt.Errorf("read layer properties: %w", err)
		}
		log.Debug("no mapchef output, using planned layers", zap.Int("layers", len(names)))
		for _, n := range names {
			res.Records = append(res.Records, records.NewRecord(op.ID, n, records.ResultNotEvaluated))
		}
	default:
		return nil, err
	}

	return res, nil
}

func isSkippable(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrOperationInvalid)
}
