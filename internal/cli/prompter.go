package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/Veraticus/labelgene/internal/common"
	"github.com/Veraticus/labelgene/internal/labels"
	"github.com/Veraticus/labelgene/internal/mailmerge"
	"github.com/Veraticus/labelgene/internal/model"
	"github.com/Veraticus/labelgene/internal/service"
	"github.com/schollz/progressbar/v3"
)

// ErrQuit is returned when the user chooses to leave a prompt.
var ErrQuit = errors.New("user quit")

const (
	defaultMaxRetries = 10
	// Lists longer than this are shown abbreviated.
	longListThreshold = 30
)

// Prompter implements the interactive CLI prompts for a labelling run.
type Prompter struct {
	writer      io.Writer
	reader      *NonBlockingReader
	progressBar *progressbar.ProgressBar
	maxRetries  int
	progressMu  sync.Mutex
}

var _ service.Prompter = (*Prompter)(nil)

// NewPrompter creates a new CLI prompter with the given reader and writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader:     NewNonBlockingReader(reader),
		writer:     writer,
		maxRetries: defaultMaxRetries,
	}
}

// SelectCollections lists the parsed collections and reads an index
// expression ("1", "2-3", "1, 4"). "a" selects every collection and "q"
// quits.
func (p *Prompter) SelectCollections(ctx context.Context, collections []service.CollectionSummary) ([]int, error) {
	if len(collections) == 0 {
		return nil, nil
	}

	p.println(FormatTitle("Select collections to label"))
	names := make([]string, len(collections))
	for i, c := range collections {
		names[i] = strconv.Itoa(i)
		p.printf("%2d. %s - %s %s\n", i+1, c.Collection, AccentStyle.Render(c.CallNumber),
			SubtleStyle.Render(fmt.Sprintf("(%d items)", c.Items)))
	}
	p.println()

	for attempt := 0; attempt < p.maxRetries; attempt++ {
		input, err := p.promptLine(ctx, "Choose numbers, 'a' for all, or 'q' to quit")
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(input) {
		case "q":
			return nil, ErrQuit
		case "a", "all":
			all := make([]int, len(collections))
			for i := range all {
				all[i] = i
			}
			return all, nil
		}

		picked, err := labels.ParseSelection(input, names)
		if err != nil {
			p.println(FormatError(err.Error()))
			continue
		}
		indexes := make([]int, len(picked))
		for i, s := range picked {
			indexes[i], _ = strconv.Atoi(s)
		}
		return indexes, nil
	}

	return nil, p.tooManyAttempts()
}

// NumberingPreference asks how box labels should describe their folders.
func (p *Prompter) NumberingPreference(ctx context.Context) (labels.Numbering, error) {
	p.println(FormatInfo("The folders are not numbered in the finding aid; labelgene will number them."))
	p.println("  [1] Continuous (box labels show FIRST - LAST folder number range)")
	p.println("  [2] Non-continuous (box labels show total FOLDER COUNT per box)")
	p.println("  [3] Exit")
	p.println()

	choice, err := p.promptChoice(ctx, "Numbering", []string{"1", "2", "3"})
	if err != nil {
		return "", err
	}

	switch choice {
	case "1":
		return labels.Continuous, nil
	case "2":
		return labels.Count, nil
	default:
		return "", ErrQuit
	}
}

// ChooseLabelType shows the label menu and returns the chosen combination.
func (p *Prompter) ChooseLabelType(ctx context.Context) (mailmerge.LabelType, error) {
	options := mailmerge.LabelTypeOptions()

	p.println(FormatTitle("Choose the labels to produce"))
	valid := make([]string, 0, len(options)+1)
	for i, name := range options {
		p.printf("  [%d] %s\n", i+1, name)
		valid = append(valid, strconv.Itoa(i+1))
	}
	exit := strconv.Itoa(len(options) + 1)
	p.printf("  [%s] Exit\n\n", exit)
	valid = append(valid, exit)

	choice, err := p.promptChoice(ctx, "Label type", valid)
	if err != nil {
		return 0, err
	}
	if choice == exit {
		return 0, ErrQuit
	}

	n, _ := strconv.Atoi(choice)
	return mailmerge.ParseLabelType(n)
}

// SelectOptions displays options and reads an index expression. Entering
// "q" or nothing skips the selection and returns nil.
func (p *Prompter) SelectOptions(ctx context.Context, title string, options []string) ([]string, error) {
	if len(options) == 0 {
		return nil, nil
	}

	p.println(FormatTitle(title))
	p.displayOptions(options)

	for attempt := 0; attempt < p.maxRetries; attempt++ {
		input, err := p.promptLine(ctx, "Select by number, range, or combination (e.g. '1', '2-3', '4, 5-6'), 'q' to skip")
		if err != nil {
			return nil, err
		}
		if input == "" || strings.EqualFold(input, "q") {
			return nil, nil
		}

		selected, err := labels.ParseSelection(input, options)
		if err != nil {
			p.println(FormatError(err.Error()))
			continue
		}

		p.println(FormatSuccess("Selected: " + strings.Join(selected, ", ")))
		return selected, nil
	}

	return nil, p.tooManyAttempts()
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	choice, err := p.promptChoice(ctx, question+" [y/n]", []string{"y", "yes", "n", "no"})
	if err != nil {
		return false, err
	}
	return choice == "y" || choice == "yes", nil
}

// displayOptions prints a numbered list, abbreviating long lists to the
// first ten and last three entries.
func (p *Prompter) displayOptions(options []string) {
	show := func(i int) {
		line := fmt.Sprintf("%2d. %s", i+1, options[i])
		if options[i] == model.UnassignedBox {
			line += " " + WarningStyle.Render("(no box in finding aid; verify before printing)")
		}
		p.println(line)
	}

	if len(options) <= longListThreshold {
		for i := range options {
			show(i)
		}
		p.println()
		return
	}

	for i := 0; i < 10; i++ {
		show(i)
	}
	for i := 0; i < 3; i++ {
		p.println("... ...")
	}
	for i := len(options) - 3; i < len(options); i++ {
		show(i)
	}
	p.println()
}

// StartProgress shows a progress bar for total files.
func (p *Prompter) StartProgress(total int, description string) {
	p.progressMu.Lock()
	defer p.progressMu.Unlock()

	p.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[blue]█[reset]",
			SaucerHead:    "[blue]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(p.writer)
		}),
	)
}

// Advance moves the progress bar by one. It is safe for concurrent use.
func (p *Prompter) Advance() {
	p.progressMu.Lock()
	defer p.progressMu.Unlock()

	if p.progressBar == nil {
		return
	}
	if err := p.progressBar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// FinishProgress completes and drops the progress bar.
func (p *Prompter) FinishProgress() {
	p.progressMu.Lock()
	defer p.progressMu.Unlock()

	if p.progressBar == nil {
		return
	}
	if err := p.progressBar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	p.progressBar = nil
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		choice, err := p.promptLine(ctx, prompt)
		if err != nil {
			return "", err
		}
		choice = strings.ToLower(choice)

		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		p.println(FormatError("Invalid choice. Please try again."))
	}
	return "", p.tooManyAttempts()
}

func (p *Prompter) promptLine(ctx context.Context, prompt string) (string, error) {
	p.printf("%s", FormatPrompt(prompt))

	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, ErrInputCancelled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return line, nil
}

func (p *Prompter) tooManyAttempts() error {
	p.println(FormatError("Too many incorrect attempts."))
	return fmt.Errorf("%w: too many incorrect attempts", common.ErrInvalidSelection)
}

func (p *Prompter) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(p.writer, format, args...); err != nil {
		slog.Warn("Failed to write prompt output", "error", err)
	}
}

func (p *Prompter) println(args ...any) {
	if _, err := fmt.Fprintln(p.writer, args...); err != nil {
		slog.Warn("Failed to write prompt output", "error", err)
	}
}
