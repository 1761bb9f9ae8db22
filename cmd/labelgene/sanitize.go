package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Veraticus/labelgene/internal/cli"
	"github.com/Veraticus/labelgene/internal/ead"
	"github.com/spf13/cobra"
)

// maxListedLines caps the line numbers printed per file.
const maxListedLines = 10

func sanitizeCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "sanitize <files...>",
		Short: "Replace characters XML does not allow in EAD files",
		Long: `Replace control characters and invalid UTF-8 in EAD exports with '?' and
write the result next to the original as <name>_sanitized.xml. The original file
is never modified.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sanitizeFiles(cmd.OutOrStdout(), args, check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Only report invalid characters; fail if any are found")

	return cmd
}

func sanitizeFiles(out io.Writer, paths []string, check bool) error {
	sanitizer := ead.NewSanitizer()
	dirty := 0

	for _, path := range paths {
		raw, err := os.ReadFile(path) //nolint:gosec // user-provided path
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		clean, report := sanitizer.Sanitize(raw)
		if !report.Changed() {
			_, _ = fmt.Fprintln(out, cli.FormatSuccess(path+": "+report.String()))
			continue
		}
		dirty++
		_, _ = fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%s: %s (lines %s)", path, report, formatLines(report.Lines()))))

		if check {
			continue
		}
		dest := ead.SanitizedPath(path)
		if err := os.WriteFile(dest, clean, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		_, _ = fmt.Fprintln(out, cli.FormatSuccess("Wrote "+dest))
	}

	if check && dirty > 0 {
		return fmt.Errorf("%d of %d files contain invalid characters", dirty, len(paths))
	}
	return nil
}

func formatLines(lines []int) string {
	shown := lines
	if len(shown) > maxListedLines {
		shown = shown[:maxListedLines]
	}
	parts := make([]string, len(shown))
	for i, n := range shown {
		parts[i] = strconv.Itoa(n)
	}
	text := strings.Join(parts, ", ")
	if len(lines) > len(shown) {
		text += fmt.Sprintf(" and %d more", len(lines)-len(shown))
	}
	return text
}
