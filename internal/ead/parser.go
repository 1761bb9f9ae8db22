// Package ead reads EAD2002 finding aids into the flat item model.
package ead

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/labelgene/internal/common"
	"github.com/Veraticus/labelgene/internal/model"
	"github.com/beevik/etree"
)

// Namespace is the EAD2002 namespace URI.
const Namespace = "urn:isbn:1-931666-22-9"

// componentTag matches both unnumbered <c> and numbered <c01>..<c12> tags.
var componentTag = regexp.MustCompile(`^c(\d{1,2})?$`)

// namedEntities are HTML entities that show up in exported finding aids.
var namedEntities = map[string]string{
	"nbsp":   "\u00a0",
	"ndash":  "\u2013",
	"mdash":  "\u2014",
	"copy":   "\u00a9",
	"hellip": "\u2026",
}

// ParseError is returned when a document cannot be read as an EAD finding aid.
type ParseError struct {
	Err  error
	Path string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Path, common.ErrParse, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{common.ErrParse, e.Err}
}

// Parser implements EAD file parsing.
type Parser struct {
	extractor *Extractor
}

// NewParser creates a new EAD parser.
func NewParser() *Parser {
	return &Parser{extractor: NewExtractor()}
}

// Parse reads a sanitized EAD document and returns its finding aid.
func (p *Parser) Parse(ctx context.Context, path string, reader io.Reader) (*model.FindingAid, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("failed to read EAD file: %w", err)}
	}
	return p.ParseBytes(ctx, path, content)
}

// ParseBytes parses an in-memory EAD document.
func (p *Parser) ParseBytes(ctx context.Context, path string, content []byte) (*model.FindingAid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := readDocument(content)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	root := doc.Root()
	if root == nil || root.Tag != "ead" {
		return nil, &ParseError{Path: path, Err: common.ErrNotEAD}
	}

	aid := &model.FindingAid{
		Path:       path,
		Repository: textOr(childPath(root, "archdesc", "did", "repository", "corpname"), model.UnknownRepository),
		Collection: textOr(childPath(root, "archdesc", "did", "unittitle"), model.UnknownCollection),
		CallNumber: textOr(childPath(root, "archdesc", "did", "unitid"), model.UnknownCallNumber),
		Author:     textOr(childPath(root, "eadheader", "filedesc", "titlestmt", "author"), model.UnknownAuthor),
	}

	dsc := findFirst(root, "dsc")
	if dsc == nil {
		slog.Warn("Finding aid has no container list", "file", path)
		return aid, nil
	}

	for _, c := range TerminalComponents(dsc) {
		item := p.extractor.Extract(c)
		item.Ordinal = len(aid.Items)
		aid.Items = append(aid.Items, item)
	}

	slog.Debug("Parsed EAD file",
		"file", path,
		"collection", aid.Collection,
		"items", len(aid.Items))

	return aid, nil
}

// TerminalComponents returns every component under dsc that has no child
// component, in document order.
func TerminalComponents(dsc *etree.Element) []*etree.Element {
	var out []*etree.Element
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, child := range e.ChildElements() {
			if !IsComponent(child) {
				continue
			}
			if IsTerminal(child) {
				out = append(out, child)
				continue
			}
			walk(child)
		}
	}
	walk(dsc)
	return out
}

// IsComponent reports whether e is a <c> or <cNN> element.
func IsComponent(e *etree.Element) bool {
	return e != nil && componentTag.MatchString(e.Tag)
}

// IsTerminal reports whether e has no child components.
func IsTerminal(e *etree.Element) bool {
	for _, child := range e.ChildElements() {
		if IsComponent(child) {
			return false
		}
	}
	return true
}

func readDocument(content []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Entity = namedEntities
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return doc, nil
}

// child returns the first direct child of e with the given local name.
func child(e *etree.Element, tag string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// children returns all direct children of e with the given local name.
func children(e *etree.Element, tag string) []*etree.Element {
	if e == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// childPath follows a chain of direct children by local name.
func childPath(e *etree.Element, tags ...string) *etree.Element {
	for _, tag := range tags {
		e = child(e, tag)
		if e == nil {
			return nil
		}
	}
	return e
}

// findFirst returns the first descendant of e with the given local name.
func findFirst(e *etree.Element, tag string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			return c
		}
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// innerText joins all character data below e with collapsed whitespace.
func innerText(e *etree.Element) string {
	if e == nil {
		return ""
	}
	var buf bytes.Buffer
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				buf.WriteString(t.Data)
				buf.WriteByte(' ')
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(e)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func textOr(e *etree.Element, fallback string) string {
	if text := innerText(e); text != "" {
		return text
	}
	return fallback
}
