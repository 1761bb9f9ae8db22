package labels

import (
	"sort"
	"strconv"

	"github.com/Veraticus/labelgene/internal/model"
)

// boxOrder places boxes without any digits first (alphabetically), then
// boxes by the first number in their label. "10A" and "10" share a key and
// keep their relative order.
func boxOrder(a, b string) int {
	na, numA := boxNumber(a)
	nb, numB := boxNumber(b)
	switch {
	case !numA && !numB:
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	case !numA:
		return -1
	case !numB:
		return 1
	}
	return na - nb
}

func boxNumber(box string) (int, bool) {
	m := anyNumber.FindString(box)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortByBox orders folder records by box and then folder number. Records
// that compare equal keep document order.
func SortByBox(records []model.LabelRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if c := boxOrder(records[i].Box, records[j].Box); c != 0 {
			return c < 0
		}
		return records[i].Folder < records[j].Folder
	})
}

// SortBoxes orders box records with the same box ordering as SortByBox.
func SortBoxes(boxes []model.BoxRecord) {
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxOrder(boxes[i].Box, boxes[j].Box) < 0
	})
}
