package ead

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/labelgene/internal/model"
	"github.com/beevik/etree"
)

// extentFolders matches extents such as "3 folders" or "1 folder".
var extentFolders = regexp.MustCompile(`(?i)\b([1-9]\d*)\s*folders?\b`)

// maxRomanSeries is the highest first-level unitid rendered as a Roman numeral.
const maxRomanSeries = 40

// Extractor pulls raw label fields from a terminal component.
type Extractor struct{}

// NewExtractor creates a new field extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract flattens a terminal component into an ItemNode. Missing fields are
// left empty or set to their documented defaults; it never fails.
func (x *Extractor) Extract(c *etree.Element) model.ItemNode {
	did := child(c, "did")
	containers := children(did, "container")

	item := model.ItemNode{
		Title:       textOr(child(did, "unittitle"), model.TitleUnavailable),
		Date:        textOr(findFirst(did, "unitdate"), model.DateUnavailable),
		Ancestors:   x.ancestorTitles(c),
		Position:    siblingPosition(c),
		FolderText:  folderText(containers),
		ExtentCount: extentCount(did),
	}

	if len(containers) > 0 {
		item.ContainerType = strings.TrimSpace(containers[0].SelectAttrValue("altrender", ""))
	}

	item.BoxLabel = boxLabel(containers)
	if item.BoxLabel == "" {
		item.BoxLabel = inheritedBoxLabel(c)
		item.BoxInherited = item.BoxLabel != ""
	}

	return item
}

// boxLabel returns the first box container, or failing that the first
// container that is not a folder.
func boxLabel(containers []*etree.Element) string {
	for _, ct := range containers {
		if containerType(ct) == "box" {
			if text := innerText(ct); text != "" {
				return text
			}
		}
	}
	for _, ct := range containers {
		if containerType(ct) != "folder" {
			if text := innerText(ct); text != "" {
				return text
			}
		}
	}
	return ""
}

// inheritedBoxLabel walks up the component chain to the nearest ancestor
// that names a box.
func inheritedBoxLabel(c *etree.Element) string {
	for p := c.Parent(); p != nil && IsComponent(p); p = p.Parent() {
		if label := boxLabel(children(child(p, "did"), "container")); label != "" {
			return label
		}
	}
	return ""
}

func folderText(containers []*etree.Element) string {
	for _, ct := range containers {
		if containerType(ct) == "folder" {
			return innerText(ct)
		}
	}
	return ""
}

func containerType(ct *etree.Element) string {
	return strings.ToLower(strings.TrimSpace(ct.SelectAttrValue("type", "")))
}

func extentCount(did *etree.Element) int {
	for _, physdesc := range children(did, "physdesc") {
		for _, extent := range children(physdesc, "extent") {
			m := extentFolders.FindStringSubmatch(innerText(extent))
			if m == nil {
				continue
			}
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 0
}

// ancestorTitles returns the titles of up to MaxAncestors enclosing
// components, outermost first. First-level series are prefixed with their
// series number.
func (x *Extractor) ancestorTitles(c *etree.Element) []string {
	var chain []*etree.Element
	for p := c.Parent(); p != nil && IsComponent(p); p = p.Parent() {
		chain = append(chain, p)
	}

	var titles []string
	for i := len(chain) - 1; i >= 0 && len(titles) < model.MaxAncestors; i-- {
		anc := chain[i]
		did := child(anc, "did")
		if did == nil {
			continue
		}
		title := innerText(child(did, "unittitle"))
		if title == "" {
			title = model.TitleUnavailable
		}

		unitid := child(did, "unitid")
		if isFirstGeneration(anc) && unitid != nil {
			title = seriesTitle(innerText(unitid), title)
		}
		titles = append(titles, title)
	}
	return titles
}

func isFirstGeneration(c *etree.Element) bool {
	p := c.Parent()
	return p != nil && p.Tag == "dsc"
}

// seriesTitle renders "Series IV. Title" for numeric unit ids 1-40 and
// "Series <unitid>. Title" for non-numeric or non-positive ones. Larger
// numbers leave the title alone.
func seriesTitle(unitid, title string) string {
	n, err := strconv.Atoi(strings.TrimSpace(unitid))
	if err != nil || n < 1 {
		return fmt.Sprintf("Series %s. %s", strings.TrimSpace(unitid), title)
	}
	if n <= maxRomanSeries {
		return fmt.Sprintf("Series %s. %s", Roman(n), title)
	}
	return title
}

// Roman converts n (1-3999) to a Roman numeral; other values are returned
// as decimal strings.
func Roman(n int) string {
	if n < 1 || n > 3999 {
		return strconv.Itoa(n)
	}
	values := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	symbols := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}

	var b strings.Builder
	for i, v := range values {
		for n >= v {
			b.WriteString(symbols[i])
			n -= v
		}
	}
	return b.String()
}

func siblingPosition(c *etree.Element) int {
	p := c.Parent()
	if p == nil {
		return 0
	}
	pos := 0
	for _, sib := range p.ChildElements() {
		if sib == c {
			return pos
		}
		if IsComponent(sib) {
			pos++
		}
	}
	return pos
}
