// Package resolver assigns box and folder numbers to the items of a finding
// aid. It is a pure function of its input and performs no I/O.
package resolver

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/labelgene/internal/model"
)

// DefaultStartValue is the first implicit folder number in a box.
const DefaultStartValue = 1

// maxFolderNumber bounds explicit folder numbers so counters cannot overflow.
const maxFolderNumber = 1_000_000

var digits = regexp.MustCompile(`\d+`)

// Options configures a Resolver.
type Options struct {
	// StartValue is the first inferred folder number in a box. Values below
	// 1 fall back to DefaultStartValue.
	StartValue int
}

// Resolver computes folder assignments for one finding aid at a time.
type Resolver struct {
	start int
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	start := opts.StartValue
	if start < 1 {
		start = DefaultStartValue
	}
	return &Resolver{start: start}
}

// ResolveFolders resolves aid with the default start value.
func ResolveFolders(aid *model.FindingAid) []model.FolderAssignment {
	return New(Options{}).Resolve(aid)
}

// ResolveItems resolves items with the default start value.
func ResolveItems(items []model.ItemNode) []model.FolderAssignment {
	return New(Options{}).ResolveItems(items)
}

// Resolve returns one assignment per item of aid, in item order.
func (r *Resolver) Resolve(aid *model.FindingAid) []model.FolderAssignment {
	if aid == nil {
		return nil
	}
	return r.ResolveItems(aid.Items)
}

// ResolveItems walks items once, keeping a next-folder counter per box.
//
// An item's box is its own (or inherited) box label; without one it stays in
// the current box, or UnassignedBox when no box has been seen yet. Explicit
// folder numbers are used verbatim and move the box counter past them.
// Other items take the counter and advance it by their folder span.
func (r *Resolver) ResolveItems(items []model.ItemNode) []model.FolderAssignment {
	if len(items) == 0 {
		return nil
	}

	st := state{
		start:    r.start,
		counters: make(map[string]int),
	}

	out := make([]model.FolderAssignment, len(items))
	for i, item := range items {
		out[i] = st.assign(item)
	}
	return out
}

// state is the per-finding-aid resolver state. An empty current box means
// no box label has been seen yet.
type state struct {
	counters map[string]int
	current  string
	start    int
}

func (s *state) assign(item model.ItemNode) model.FolderAssignment {
	if box := strings.TrimSpace(item.BoxLabel); box != "" {
		s.current = box
	}
	next, seen := s.counters[s.current]
	if !seen {
		next = s.start
	}

	a := model.FolderAssignment{
		Box:         s.current,
		ItemOrdinal: item.Ordinal,
	}
	if s.current == "" {
		a.Box, a.Unassigned = model.UnassignedBox, true
	}

	if first, last, ok := ParseFolderText(item.FolderText); ok {
		a.Folder, a.LastFolder = first, last
		a.Source = model.SourceExplicit
		s.counters[s.current] = last + 1
		return a
	}

	span := item.ExtentCount
	if span < 1 {
		span = 1
	}
	a.Folder, a.LastFolder = next, next+span-1
	a.Source = model.SourceInferred
	s.counters[s.current] = next + span
	return a
}

// ParseFolderText reads an explicit folder number ("7", "Folder 7") or range
// ("3-5"). Text without digits, or with numbers above maxFolderNumber, is
// not a usable folder number. A range whose end precedes its start is read
// as its start only.
func ParseFolderText(text string) (first, last int, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, 0, false
	}

	normalized := strings.NewReplacer("–", "-", "—", "-").Replace(text)
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		start, okStart := firstNumber(parts[0])
		end, okEnd := firstNumber(parts[1])
		switch {
		case okStart && okEnd && end >= start:
			return start, end, true
		case okStart:
			return start, start, true
		}
	}

	n, found := firstNumber(normalized)
	if !found {
		return 0, 0, false
	}
	return n, n, true
}

func firstNumber(s string) (int, bool) {
	m := digits.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n > maxFolderNumber {
		return 0, false
	}
	return n, true
}
