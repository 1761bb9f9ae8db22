package labels

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/labelgene/internal/common"
	"github.com/Veraticus/labelgene/internal/model"
)

// UnknownSeries is offered when some folders have no first-level series.
const UnknownSeries = "Unknown series"

var (
	acquisitionSeries = regexp.MustCompile(`(\w+)\s+(\d{4})\s+acquisition`)
	leadingNumber     = regexp.MustCompile(`^(\d+)(.*)$`)
	anyNumber         = regexp.MustCompile(`\d+`)
)

// ParseSelection resolves a 1-based index expression such as "1", "2-3" or
// "4, 5-6" against options. The result keeps option order and holds no
// duplicates. Out-of-range or malformed input wraps common.ErrInvalidSelection.
func ParseSelection(input string, options []string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty selection", common.ErrInvalidSelection)
	}

	picked := make([]bool, len(options))
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		lo, hi, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		if lo < 1 || hi > len(options) || lo > hi {
			return nil, fmt.Errorf("%w: %q is outside 1-%d", common.ErrInvalidSelection, part, len(options))
		}
		for i := lo; i <= hi; i++ {
			picked[i-1] = true
		}
	}

	var out []string
	for i, ok := range picked {
		if ok {
			out = append(out, options[i])
		}
	}
	return out, nil
}

func parseRange(part string) (int, int, error) {
	startText, endText, isRange := strings.Cut(part, "-")
	start, err := strconv.Atoi(strings.TrimSpace(startText))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q is not a number", common.ErrInvalidSelection, part)
	}
	if !isRange {
		return start, start, nil
	}
	end, err := strconv.Atoi(strings.TrimSpace(endText))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q is not a range", common.ErrInvalidSelection, part)
	}
	return start, end, nil
}

// SeriesOptions lists the distinct first-level series of records. Plain
// series sort alphabetically, dated "<Month> <year> acquisition" series
// follow in date order, and UnknownSeries comes last when any record lacks
// a series.
func SeriesOptions(records []model.LabelRecord) []string {
	seen := make(map[string]bool)
	unknown := false
	var series []string
	for _, r := range records {
		s := r.Ancestors[0]
		if s == "" {
			unknown = true
			continue
		}
		if !seen[s] {
			seen[s] = true
			series = append(series, s)
		}
	}

	sort.SliceStable(series, func(i, j int) bool {
		gi, di := seriesKey(series[i])
		gj, dj := seriesKey(series[j])
		if gi != gj {
			return gi < gj
		}
		if gi == 1 {
			return di.Before(dj)
		}
		return strings.ToLower(series[i]) < strings.ToLower(series[j])
	})

	if unknown {
		series = append(series, UnknownSeries)
	}
	return series
}

func seriesKey(s string) (int, time.Time) {
	m := acquisitionSeries.FindStringSubmatch(s)
	if m == nil {
		return 0, time.Time{}
	}
	t, err := time.Parse("January 2006", m[1]+" "+m[2])
	if err != nil {
		return 0, time.Time{}
	}
	return 1, t
}

// FilterBySeries keeps folder records whose first-level series is selected.
// Selecting UnknownSeries keeps records without a series.
func FilterBySeries(records []model.LabelRecord, selected []string) []model.LabelRecord {
	want := toSet(selected)
	var out []model.LabelRecord
	for _, r := range records {
		s := r.Ancestors[0]
		if want[s] || (s == "" && want[UnknownSeries]) {
			out = append(out, r)
		}
	}
	return out
}

// FilterBoxesBySeries keeps box records holding any selected series.
func FilterBoxesBySeries(boxes []model.BoxRecord, selected []string) []model.BoxRecord {
	want := toSet(selected)
	var out []model.BoxRecord
	for _, b := range boxes {
		for _, s := range b.Series {
			if s != "" && want[s] {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// BoxOptions lists the boxes of a set for selection, ordered by leading
// number and then by suffix; boxes without a leading number come first.
func BoxOptions(boxes []model.BoxRecord) []string {
	out := make([]string, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, b.Box)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ni, ti := optionKey(out[i])
		nj, tj := optionKey(out[j])
		if ni != nj {
			return ni < nj
		}
		return ti < tj
	})
	return out
}

func optionKey(box string) (int, string) {
	m := leadingNumber.FindStringSubmatch(box)
	if m == nil {
		return 0, box
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, box
	}
	return n, m[2]
}

// FilterByBoxes keeps folder records in the selected boxes.
func FilterByBoxes(records []model.LabelRecord, selected []string) []model.LabelRecord {
	want := toSet(selected)
	var out []model.LabelRecord
	for _, r := range records {
		if want[r.Box] {
			out = append(out, r)
		}
	}
	return out
}

// FilterBoxRecords keeps box records for the selected boxes.
func FilterBoxRecords(boxes []model.BoxRecord, selected []string) []model.BoxRecord {
	want := toSet(selected)
	var out []model.BoxRecord
	for _, b := range boxes {
		if want[b.Box] {
			out = append(out, b)
		}
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
