// Package batch runs the read, sanitize, parse and resolve stages over a
// set of EAD files with bounded parallelism.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/Veraticus/labelgene/internal/common"
	"github.com/Veraticus/labelgene/internal/ead"
	"github.com/Veraticus/labelgene/internal/model"
	"github.com/Veraticus/labelgene/internal/resolver"
	"golang.org/x/sync/errgroup"
)

// Stage names the pipeline step a file failed in.
type Stage string

// Pipeline stages.
const (
	StageRead     Stage = "read"
	StageSanitize Stage = "sanitize"
	StageParse    Stage = "parse"
	StageResolve  Stage = "resolve"
)

// FileFailure is a file the batch could not process.
type FileFailure struct {
	Err   error
	Path  string
	Stage Stage
}

func (f FileFailure) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.Path, f.Stage, f.Err)
}

func (f FileFailure) Unwrap() error {
	return f.Err
}

// Result is a finding aid that made it through every stage.
type Result struct {
	Aid           *model.FindingAid
	Path          string
	SanitizedPath string // Set when a sanitized copy was written
	Assignments   []model.FolderAssignment
	Unassigned    []resolver.UnassignedBoxWarning
	Warnings      []string
	Sanitize      ead.Report
}

// Summary holds the outcome of a batch, both lists in input order.
type Summary struct {
	Results  []Result
	Failures []FileFailure
}

// Options configures a Runner.
type Options struct {
	// Progress is called from worker goroutines after each file.
	Progress       func(path string)
	Workers        int
	StartValue     int
	WriteSanitized bool
}

// Runner processes EAD files.
type Runner struct {
	sanitizer *ead.Sanitizer
	parser    *ead.Parser
	resolver  *resolver.Resolver
	opts      Options
}

// NewRunner creates a Runner. Workers below 1 default to the CPU count.
func NewRunner(opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	return &Runner{
		sanitizer: ead.NewSanitizer(),
		parser:    ead.NewParser(),
		resolver:  resolver.New(resolver.Options{StartValue: opts.StartValue}),
		opts:      opts,
	}
}

type outcome struct {
	result  *Result
	failure *FileFailure
}

// Run processes paths in parallel. A failing file never stops the batch;
// only cancellation of ctx does, in which case the partial summary is
// returned with ctx's error.
func (r *Runner) Run(ctx context.Context, paths []string) (Summary, error) {
	outcomes := make([]outcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			res, err := r.ProcessFile(gctx, path)
			if err != nil {
				var failure FileFailure
				if !errors.As(err, &failure) {
					failure = FileFailure{Path: path, Stage: StageRead, Err: err}
				}
				outcomes[i].failure = &failure
			} else {
				outcomes[i].result = res
			}
			if r.opts.Progress != nil {
				r.opts.Progress(path)
			}
			return nil
		})
	}

	// Workers never return errors, so Wait only reports completion.
	_ = g.Wait()

	var summary Summary
	for _, o := range outcomes {
		switch {
		case o.result != nil:
			summary.Results = append(summary.Results, *o.result)
		case o.failure != nil:
			if errors.Is(o.failure.Err, context.Canceled) || errors.Is(o.failure.Err, context.DeadlineExceeded) {
				continue
			}
			summary.Failures = append(summary.Failures, *o.failure)
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// ProcessFile runs every stage for one file. Failures are FileFailure.
func (r *Runner) ProcessFile(ctx context.Context, path string) (*Result, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // user-provided path
	if err != nil {
		return nil, r.fail(path, StageRead, err)
	}

	content, report, err := r.sanitizer.Prepare(path, raw)
	if err != nil {
		return nil, r.fail(path, StageSanitize, err)
	}

	res := &Result{Path: path, Sanitize: report}
	if report.Changed() {
		common.LogWarn("Sanitized invalid characters", common.Fields{
			"file":  path,
			"chars": report.TotalChars(),
			"lines": report.Lines(),
		})
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s", path, report))
		if r.opts.WriteSanitized {
			res.SanitizedPath = ead.SanitizedPath(path)
			if err := os.WriteFile(res.SanitizedPath, content, 0o600); err != nil {
				return nil, r.fail(path, StageSanitize, fmt.Errorf("failed to write sanitized copy: %w", err))
			}
		}
	}

	aid, err := r.parser.ParseBytes(ctx, path, content)
	if err != nil {
		return nil, r.fail(path, StageParse, err)
	}
	if len(aid.Items) == 0 {
		return nil, r.fail(path, StageResolve, common.ErrNoItems)
	}

	res.Aid = aid
	res.Assignments = r.resolver.Resolve(aid)
	res.Unassigned = resolver.UnassignedWarnings(aid, res.Assignments)
	res.Warnings = append(res.Warnings, resolver.UnparsedFolderWarnings(aid)...)
	return res, nil
}

func (r *Runner) fail(path string, stage Stage, err error) error {
	if !errors.Is(err, context.Canceled) {
		common.LogError(err, "Failed to process EAD file", common.Fields{"file": path, "stage": string(stage)})
	}
	return FileFailure{Path: path, Stage: stage, Err: err}
}
