package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Veraticus/labelgene/internal/batch"
	"github.com/Veraticus/labelgene/internal/cli"
	"github.com/Veraticus/labelgene/internal/common"
	"github.com/Veraticus/labelgene/internal/config"
	"github.com/Veraticus/labelgene/internal/ead"
	"github.com/Veraticus/labelgene/internal/export"
	"github.com/Veraticus/labelgene/internal/labels"
	"github.com/Veraticus/labelgene/internal/mailmerge"
	"github.com/Veraticus/labelgene/internal/model"
	"github.com/Veraticus/labelgene/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// recentDownloads is how far back --import-downloads looks.
const recentDownloads = 24 * time.Hour

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Number folders and write label data sources",
		Long: `Read EAD finding aids, resolve the box and folder of every item and write the
folder and box spreadsheets the label templates merge from.

Without file arguments every EAD file in the input directory is read, newest
first. A merge manifest listing the template, macro and data source of each
label document is written next to the spreadsheets.

Label types:
` + labelTypeHelp(),
		RunE: runLabels,
	}

	// Input and output
	cmd.Flags().StringP("input", "i", "", "Directory holding EAD files (default: current directory)")
	cmd.Flags().StringP("output", "o", "", "Directory for data sources, manifest and report (default: input directory)")
	cmd.Flags().String("templates", "", "Directory holding the label templates")
	cmd.Flags().Bool("import-downloads", false, "Copy EAD files downloaded in the last 24 hours into the input directory")

	// Labels
	cmd.Flags().StringP("numbering", "n", config.NumberingContinuous, "Box label numbering (continuous, count)")
	cmd.Flags().IntP("label-type", "t", 1, "Label combination, 1-8")
	cmd.Flags().String("sort", config.SortDocument, "Folder record order (document, box)")
	cmd.Flags().String("series", "", "Series to label, by index (e.g. '1', '2-3', '1, 4')")
	cmd.Flags().String("boxes", "", "Boxes to label, by index")
	cmd.Flags().Int("start", 1, "First inferred folder number in each box")

	// Other options
	cmd.Flags().IntP("workers", "w", runtime.NumCPU(), "Finding aids read in parallel")
	cmd.Flags().Bool("manifest", true, "Write the merge manifest")
	cmd.Flags().Bool("dry-run", false, "Resolve and report without writing data sources or a manifest")
	cmd.Flags().Bool("non-interactive", false, "Never prompt; take every choice from flags and config")
	cmd.Flags().Bool("all", false, "Label every collection without asking")

	// Bind to viper
	_ = viper.BindPFlag("input.dir", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("output.dir", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("mailmerge.templates", cmd.Flags().Lookup("templates"))
	_ = viper.BindPFlag("downloads.import", cmd.Flags().Lookup("import-downloads"))
	_ = viper.BindPFlag("labels.numbering", cmd.Flags().Lookup("numbering"))
	_ = viper.BindPFlag("labels.type", cmd.Flags().Lookup("label-type"))
	_ = viper.BindPFlag("labels.sort", cmd.Flags().Lookup("sort"))
	_ = viper.BindPFlag("labels.series", cmd.Flags().Lookup("series"))
	_ = viper.BindPFlag("labels.boxes", cmd.Flags().Lookup("boxes"))
	_ = viper.BindPFlag("folders.implicit_start_value", cmd.Flags().Lookup("start"))
	_ = viper.BindPFlag("batch.workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("mailmerge.manifest", cmd.Flags().Lookup("manifest"))
	_ = viper.BindPFlag("run.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("run.non_interactive", cmd.Flags().Lookup("non-interactive"))
	_ = viper.BindPFlag("run.all", cmd.Flags().Lookup("all"))

	return cmd
}

func labelTypeHelp() string {
	var b strings.Builder
	for i, name := range mailmerge.LabelTypeOptions() {
		fmt.Fprintf(&b, "  %d  %s\n", i+1, name)
	}
	return b.String()
}

func runLabels(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	if err := config.EnsureDir(cfg.OutputDir); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	interrupts := cli.NewInterruptHandler(out)
	ctx := interrupts.HandleInterrupts(cmd.Context(), true)
	defer interrupts.Stop()

	ctx = common.WithLogger(ctx, slog.Default().With("command", "run"))
	logger := common.LoggerFrom(ctx)

	writer, err := export.NewWriter(export.DefaultConfig(cfg.OutputDir), logger)
	if err != nil {
		return fmt.Errorf("failed to create data source writer: %w", err)
	}

	prompter := cli.NewPrompter(os.Stdin, out)
	run := &labelRun{
		cfg:          cfg,
		prompter:     prompter,
		writer:       writer,
		trigger:      mailmerge.NewManifestTrigger(cfg.OutputDir, logger),
		progress:     prompter,
		out:          out,
		logger:       logger,
		now:          time.Now,
		interactive:  !viper.GetBool("run.non_interactive") && isTerminal(os.Stdin),
		selectAll:    viper.GetBool("run.all"),
		numberingSet: cmd.Flags().Changed("numbering") || viper.InConfig("labels.numbering"),
		labelTypeSet: cmd.Flags().Changed("label-type") || viper.InConfig("labels.type"),
	}

	err = run.execute(ctx, args)
	if errors.Is(err, cli.ErrQuit) {
		run.println(cli.FormatInfo("Goodbye."))
		return nil
	}
	if interrupts.WasInterrupted() {
		return nil
	}
	return err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// progressReporter shows per-file progress while the batch runs.
type progressReporter interface {
	StartProgress(total int, description string)
	Advance()
	FinishProgress()
}

// labelRun carries one invocation of the run command.
type labelRun struct {
	prompter service.Prompter
	writer   service.RecordWriter
	trigger  service.MergeTrigger
	progress progressReporter
	out      io.Writer
	logger   *slog.Logger
	now      func() time.Time

	// Choices made once per run and reused for every collection.
	numbering labels.Numbering
	labelType mailmerge.LabelType

	cfg          config.Config
	interactive  bool
	selectAll    bool
	numberingSet bool
	labelTypeSet bool
}

func (r *labelRun) execute(ctx context.Context, args []string) error {
	paths, err := r.inputFiles(args)
	if err != nil {
		return err
	}

	report := export.NewReport(r.now(), r.cfg.Numbering)
	report.DryRun = r.cfg.DryRun

	plans, err := r.process(ctx, paths, report)
	if err == nil {
		err = r.writeManifest(ctx, report.RunID, plans)
	}
	if reportErr := r.finish(report); reportErr != nil && err == nil {
		err = reportErr
	}
	return err
}

func (r *labelRun) inputFiles(args []string) ([]string, error) {
	if r.cfg.ImportDownloads {
		copied, err := ead.ImportRecent(r.cfg.DownloadsDir, r.cfg.InputDir, recentDownloads, r.now())
		if err != nil {
			return nil, fmt.Errorf("failed to import downloads: %w", err)
		}
		if len(copied) > 0 {
			r.println(cli.FormatInfo(fmt.Sprintf("Copied %d recent downloads into %s", len(copied), r.cfg.InputDir)))
		}
	}

	if len(args) > 0 {
		return args, nil
	}
	return ead.Discover(r.cfg.InputDir)
}

func (r *labelRun) process(ctx context.Context, paths []string, report *export.Report) ([]mailmerge.Plan, error) {
	runner := batch.NewRunner(batch.Options{
		Workers:        r.cfg.Workers,
		StartValue:     r.cfg.ImplicitStart,
		WriteSanitized: !r.cfg.DryRun,
		Progress: func(string) {
			if r.progress != nil {
				r.progress.Advance()
			}
		},
	})

	if r.progress != nil {
		r.progress.StartProgress(len(paths), "Reading finding aids")
	}
	summary, err := runner.Run(ctx, paths)
	if r.progress != nil {
		r.progress.FinishProgress()
	}

	for _, f := range summary.Failures {
		r.println(cli.FormatError(f.Error()))
		report.Failures = append(report.Failures, export.Failure{
			Path:  f.Path,
			Stage: string(f.Stage),
			Error: f.Err.Error(),
		})
	}
	if err != nil {
		return nil, err
	}
	if len(summary.Results) == 0 {
		return nil, common.NewUserError("None of the finding aids could be read; see the errors above", nil)
	}

	selected, err := r.selectCollections(ctx, summary.Results)
	if err != nil {
		return nil, err
	}

	var plans []mailmerge.Plan
	for _, res := range selected {
		plan, err := r.label(ctx, res, report)
		if err != nil {
			return plans, err
		}
		if len(plan.Jobs) > 0 {
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

func (r *labelRun) selectCollections(ctx context.Context, results []batch.Result) ([]batch.Result, error) {
	if len(results) == 1 || r.selectAll || !r.interactive {
		return results, nil
	}

	summaries := make([]service.CollectionSummary, len(results))
	for i, res := range results {
		summaries[i] = service.CollectionSummary{
			Path:       res.Path,
			Collection: res.Aid.Collection,
			CallNumber: res.Aid.CallNumber,
			Items:      len(res.Aid.Items),
		}
	}

	indexes, err := r.prompter.SelectCollections(ctx, summaries)
	if err != nil {
		return nil, err
	}
	selected := make([]batch.Result, 0, len(indexes))
	for _, i := range indexes {
		selected = append(selected, results[i])
	}
	return selected, nil
}

// label builds, writes and plans the labels of one finding aid.
func (r *labelRun) label(ctx context.Context, res batch.Result, report *export.Report) (mailmerge.Plan, error) {
	aid := res.Aid
	r.println(cli.FormatTitle(fmt.Sprintf("%s %s (%s)", cli.LabelIcon, aid.Collection, aid.CallNumber)))

	numbering, err := r.numberingFor(ctx, res)
	if err != nil {
		return mailmerge.Plan{}, err
	}

	set := labels.Build(aid, res.Assignments, numbering)
	if r.cfg.Sort == config.SortBox {
		labels.SortByBox(set.Folders)
		labels.SortBoxes(set.Boxes)
	}

	explicit, inferred := labels.CountSources(res.Assignments)
	summary := export.FileSummary{
		Path:        res.Path,
		Collection:  aid.Collection,
		CallNumber:  aid.CallNumber,
		Sanitized:   res.SanitizedPath,
		Items:       len(aid.Items),
		Folders:     len(set.Folders),
		Boxes:       len(set.Boxes),
		Explicit:    explicit,
		Inferred:    inferred,
		NeedsReview: set.NeedsReview(),
	}
	report.Unassigned = append(report.Unassigned, res.Unassigned...)
	report.Warnings = append(report.Warnings, res.Warnings...)
	for _, w := range res.Unassigned {
		r.println(cli.FormatWarning(w.String()))
	}

	r.printf("%s %d folders in %d boxes (%d numbered in the finding aid, %d inferred)\n",
		cli.FolderIcon, len(set.Folders), len(set.Boxes), explicit, inferred)

	if r.cfg.DryRun {
		r.println(cli.RenderTable(boxHeader, boxRows(set.Boxes), 40))
		report.Files = append(report.Files, summary)
		return mailmerge.Plan{}, nil
	}

	paths, err := r.writer.Write(ctx, set, export.VariantAll)
	if err != nil {
		return mailmerge.Plan{}, fmt.Errorf("failed to write data sources for %s: %w", aid.Collection, err)
	}
	summary.FolderData = paths.Folders
	summary.BoxData = paths.Boxes
	report.Files = append(report.Files, summary)
	common.LogInfo("Labelled collection", common.Fields{
		"collection": aid.Collection,
		"folders":    len(set.Folders),
		"boxes":      len(set.Boxes),
	})
	r.println(cli.FormatSuccess("Folder data: " + paths.Folders))
	r.println(cli.FormatSuccess("Box data: " + paths.Boxes))

	mergeSet, mergePaths, err := r.applyFilters(ctx, set, paths)
	if err != nil {
		return mailmerge.Plan{}, err
	}

	lt, err := r.chooseLabelType(ctx)
	if err != nil {
		return mailmerge.Plan{}, err
	}

	planner := mailmerge.NewPlanner(r.cfg.OutputDir, r.writer, r.logger)
	return planner.Plan(ctx, mergeSet, mergePaths, numbering, lt)
}

// numberingFor returns the box label numbering for res. Finding aids that
// already number most of their folders always get continuous labels.
func (r *labelRun) numberingFor(ctx context.Context, res batch.Result) (labels.Numbering, error) {
	if labels.MostlyNumbered(res.Assignments) {
		r.println(cli.FormatInfo("Folders are already numbered in the finding aid; box labels show folder ranges."))
		return labels.Continuous, nil
	}
	if r.numbering != "" {
		return r.numbering, nil
	}

	if r.interactive && !r.numberingSet {
		n, err := r.prompter.NumberingPreference(ctx)
		if err != nil {
			return "", err
		}
		r.numbering = n
		common.LogDebug("Numbering chosen", common.Fields{"numbering": string(n)})
		return n, nil
	}

	n, err := labels.ParseNumbering(r.cfg.Numbering)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	r.numbering = n
	return n, nil
}

func (r *labelRun) chooseLabelType(ctx context.Context) (mailmerge.LabelType, error) {
	if r.labelType != 0 {
		return r.labelType, nil
	}

	var (
		lt  mailmerge.LabelType
		err error
	)
	if r.interactive && !r.labelTypeSet {
		lt, err = r.prompter.ChooseLabelType(ctx)
	} else {
		lt, err = mailmerge.ParseLabelType(r.cfg.LabelType)
	}
	if err != nil {
		return 0, err
	}
	r.labelType = lt
	return lt, nil
}

// applyFilters narrows set to the chosen series and then the chosen boxes.
// Each applied filter writes its own data sources, which replace paths as
// the merge source.
func (r *labelRun) applyFilters(ctx context.Context, set labels.Set, paths export.Paths) (labels.Set, export.Paths, error) {
	series, err := r.choose(ctx, r.cfg.Series, "Label only some series?", "Select series",
		labels.SeriesOptions(set.Folders))
	if err != nil {
		return set, paths, err
	}
	if len(series) > 0 {
		set.Folders = labels.FilterBySeries(set.Folders, series)
		set.Boxes = labels.FilterBoxesBySeries(set.Boxes, series)
		if paths, err = r.writeFiltered(ctx, set, export.VariantBySeries); err != nil {
			return set, paths, err
		}
	}

	boxes, err := r.choose(ctx, r.cfg.Boxes, "Label only some boxes?", "Select boxes",
		labels.BoxOptions(set.Boxes))
	if err != nil {
		return set, paths, err
	}
	if len(boxes) > 0 {
		set.Folders = labels.FilterByBoxes(set.Folders, boxes)
		set.Boxes = labels.FilterBoxRecords(set.Boxes, boxes)
		if paths, err = r.writeFiltered(ctx, set, export.VariantByBox); err != nil {
			return set, paths, err
		}
	}

	return set, paths, nil
}

func (r *labelRun) writeFiltered(ctx context.Context, set labels.Set, variant export.Variant) (export.Paths, error) {
	paths, err := r.writer.Write(ctx, set, variant)
	if err != nil {
		return export.Paths{}, fmt.Errorf("failed to write filtered data sources: %w", err)
	}
	r.println(cli.FormatSuccess(fmt.Sprintf("Filtered data: %d folders, %d boxes", len(set.Folders), len(set.Boxes))))
	return paths, nil
}

// choose resolves a filter from a configured index expression, or asks when
// the run is interactive. A nil result means no filter.
func (r *labelRun) choose(ctx context.Context, expr, question, title string, options []string) ([]string, error) {
	if len(options) == 0 {
		return nil, nil
	}
	if expr != "" {
		return labels.ParseSelection(expr, options)
	}
	if !r.interactive {
		return nil, nil
	}

	ok, err := r.prompter.Confirm(ctx, question)
	if err != nil || !ok {
		return nil, err
	}
	return r.prompter.SelectOptions(ctx, title, options)
}

func (r *labelRun) writeManifest(ctx context.Context, runID string, plans []mailmerge.Plan) error {
	if r.cfg.DryRun || !r.cfg.WriteManifest || len(plans) == 0 {
		return nil
	}

	manifest := mailmerge.Manifest{
		GeneratedAt: r.now(),
		RunID:       runID,
		TemplateDir: r.cfg.TemplateDir,
		Plans:       plans,
	}
	if err := r.trigger.Trigger(ctx, manifest); err != nil {
		return fmt.Errorf("failed to write merge manifest: %w", err)
	}
	r.println(cli.FormatSuccess(fmt.Sprintf("Merge manifest: %d label documents in %s",
		manifest.Jobs(), filepath.Join(r.cfg.OutputDir, mailmerge.ManifestFileName))))
	return nil
}

// finish writes the run report and prints the closing summary.
func (r *labelRun) finish(report *export.Report) error {
	report.FinishedAt = r.now()

	path, err := export.WriteReport(r.cfg.OutputDir, report)
	if err != nil {
		return err
	}

	folders := 0
	for _, f := range report.Files {
		folders += f.Folders
	}
	content := fmt.Sprintf("Collections labelled: %d\nFolders: %d\nFailed files: %d\nReport: %s",
		len(report.Files), folders, len(report.Failures), path)
	if report.DryRun {
		content += "\nDry run: no data sources written"
	}
	r.println(cli.RenderBox("Labelling summary", content))

	if report.NeedsReview() {
		r.println(cli.FormatWarning(
			fmt.Sprintf("Some labels are flagged NEEDS_REVIEW: items without a box are labelled %s. "+
				"Check them against the finding aid before printing.", model.UnassignedBox)))
	}
	return nil
}

func (r *labelRun) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *labelRun) println(args ...any) {
	_, _ = fmt.Fprintln(r.out, args...)
}
