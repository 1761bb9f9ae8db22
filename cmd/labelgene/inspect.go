package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/labelgene/internal/batch"
	"github.com/Veraticus/labelgene/internal/cli"
	"github.com/Veraticus/labelgene/internal/labels"
	"github.com/Veraticus/labelgene/internal/model"
	"github.com/spf13/cobra"
)

var boxHeader = []string{"BOX", "FOLDERS", "FIRST", "LAST", "CONTAINER", "SERIES"}

type inspectOptions struct {
	numbering string
	start     int
	width     int
	boxes     bool
}

func inspectCmd() *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the resolved box and folder of every item in a finding aid",
		Long: `Resolve one finding aid and print its items with the box and folder each one
is labelled with, and whether the folder number came from the finding aid or was
inferred. Nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.start, "start", 1, "First inferred folder number in each box")
	cmd.Flags().IntVar(&opts.width, "width", 40, "Maximum column width (0 for no limit)")
	cmd.Flags().BoolVar(&opts.boxes, "boxes", false, "Also show the box label summaries")
	cmd.Flags().StringVarP(&opts.numbering, "numbering", "n", string(labels.Continuous), "Box summary numbering (continuous, count)")

	return cmd
}

func inspect(ctx context.Context, out io.Writer, path string, opts inspectOptions) error {
	numbering, err := labels.ParseNumbering(opts.numbering)
	if err != nil {
		return err
	}

	runner := batch.NewRunner(batch.Options{Workers: 1, StartValue: opts.start})
	res, err := runner.ProcessFile(ctx, path)
	if err != nil {
		return err
	}
	aid := res.Aid

	explicit, inferred := labels.CountSources(res.Assignments)
	_, _ = fmt.Fprintln(out, cli.RenderBox(aid.Collection, fmt.Sprintf(
		"Repository: %s\nCall number: %s\nAuthor: %s\nItems: %d (%d numbered, %d inferred)",
		aid.Repository, aid.CallNumber, aid.Author, len(aid.Items), explicit, inferred)))

	rows := make([][]string, len(res.Assignments))
	for i, a := range res.Assignments {
		item := aid.Items[i]
		rows[i] = []string{a.Box, a.FolderRange(), string(a.Source), item.ContainerType, item.Title, item.Date}
	}
	_, _ = fmt.Fprintln(out, cli.RenderTable(
		[]string{"BOX", "FOLDER", "SOURCE", "CONTAINER", "TITLE", "DATE"}, rows, opts.width))

	if opts.boxes {
		set := labels.Build(aid, res.Assignments, numbering)
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, cli.RenderTable(boxHeader, boxRows(set.Boxes), opts.width))
	}

	for _, w := range res.Unassigned {
		_, _ = fmt.Fprintln(out, cli.FormatWarning(w.String()))
	}
	for _, w := range res.Warnings {
		_, _ = fmt.Fprintln(out, cli.FormatWarning(w))
	}
	return nil
}

func boxRows(boxes []model.BoxRecord) [][]string {
	rows := make([][]string, len(boxes))
	for i, b := range boxes {
		var series []string
		for _, s := range b.Series {
			if s != "" {
				series = append(series, s)
			}
		}
		rows[i] = []string{b.Box, strconv.Itoa(b.FolderCount), blankZero(b.FirstFolder),
			blankZero(b.LastFolder), b.ContainerType, strings.Join(series, "; ")}
	}
	return rows
}

func blankZero(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
