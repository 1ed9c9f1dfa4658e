// Package merge derives, per worksheet, which cells are swallowed by merged
// regions and the spans of the cells that own them.
package merge

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/address"
)

// Geometry is the structural input of the index: the merge references of a
// worksheet, its bounds, and the style ids of merge-covered cells.
type Geometry struct {
	Regions []string
	Bounds  address.Bounds
	Styles  map[address.Coordinate]int
}

// Key returns the structural hash of g. Two geometries with the same regions,
// bounds and covered styles share a key regardless of region order.
func (g Geometry) Key() uint64 {
	regions := make([]string, len(g.Regions))
	for i, r := range g.Regions {
		regions[i] = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(r), "$", ""))
	}
	sort.Strings(regions)

	coords := make([]address.Coordinate, 0, len(g.Styles))
	for c := range g.Styles {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Row != coords[j].Row {
			return coords[i].Row < coords[j].Row
		}
		return coords[i].Col < coords[j].Col
	})

	h := xxhash.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	writeInt(g.Bounds.MaxRow)
	writeInt(g.Bounds.MaxCol)
	writeInt(len(regions))
	for _, r := range regions {
		_, _ = h.WriteString(r)
		_, _ = h.Write([]byte{0})
	}
	for _, c := range coords {
		writeInt(c.Col)
		writeInt(c.Row)
		writeInt(g.Styles[c])
	}
	return h.Sum64()
}

// Record describes a merge owner.
type Record struct {
	RowSpan      int   `json:"rowspan"`
	ColSpan      int   `json:"colspan"`
	StyleBuckets []int `json:"additionalStyleBuckets,omitempty"`
}

// Index is the derived merge data of one worksheet.
type Index struct {
	Key          uint64
	IgnoredCells map[address.Coordinate]struct{}
	IgnoredRows  map[int]struct{}
	IgnoredCols  map[int]struct{}
	Merged       map[address.Coordinate]Record
}

// Ignored reports whether c is covered by a merge and not its owner.
func (x *Index) Ignored(c address.Coordinate) bool {
	_, ok := x.IgnoredCells[c]
	return ok
}

// RowIgnored reports whether every column of row is covered.
func (x *Index) RowIgnored(row int) bool {
	_, ok := x.IgnoredRows[row]
	return ok
}

// ColumnIgnored reports whether every row of col is covered.
func (x *Index) ColumnIgnored(col int) bool {
	_, ok := x.IgnoredCols[col]
	return ok
}

// Owner returns the record of c when it owns a merge.
func (x *Index) Owner(c address.Coordinate) (Record, bool) {
	rec, ok := x.Merged[c]
	return rec, ok
}

// regions parses the merge references of g. References that do not parse
// or cover a single cell are dropped.
func (g Geometry) regions() []address.Range {
	return ParseRegions(g.Regions)
}

// ParseRegions parses merge references, dropping malformed and single-cell
// ones.
func ParseRegions(refs []string) []address.Range {
	var out []address.Range
	for _, ref := range refs {
		r, err := address.ParseRange(ref)
		if err != nil || r.Single() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Build computes the index of g without consulting any cache.
func Build(g Geometry) *Index {
	x := &Index{
		Key:          g.Key(),
		IgnoredCells: make(map[address.Coordinate]struct{}),
		IgnoredRows:  make(map[int]struct{}),
		IgnoredCols:  make(map[int]struct{}),
		Merged:       make(map[address.Coordinate]Record),
	}
	regions := g.regions()

	colsPerRow := make(map[int]map[int]struct{})
	rowsPerCol := make(map[int]map[int]struct{})
	for _, r := range regions {
		for row := r.Start.Row; row <= r.End.Row; row++ {
			for col := r.Start.Col; col <= r.End.Col; col++ {
				if row == r.Start.Row && col == r.Start.Col {
					continue
				}
				x.IgnoredCells[address.Coordinate{Col: col, Row: row}] = struct{}{}
				addTo(colsPerRow, row, col)
				addTo(rowsPerCol, col, row)
			}
		}
	}

	if g.Bounds.MaxCol > 0 {
		for row, cols := range colsPerRow {
			if len(cols) >= g.Bounds.MaxCol {
				x.IgnoredRows[row] = struct{}{}
			}
		}
	}
	if g.Bounds.MaxRow > 0 {
		for col, rows := range rowsPerCol {
			if len(rows) >= g.Bounds.MaxRow {
				x.IgnoredCols[col] = struct{}{}
			}
		}
	}

	for _, r := range regions {
		colSpan := r.End.Col - r.Start.Col + 1
		rowSpan := r.End.Row - r.Start.Row + 1
		for col := r.Start.Col; col <= r.End.Col; col++ {
			if x.ColumnIgnored(col) {
				colSpan--
			}
		}
		for row := r.Start.Row; row <= r.End.Row; row++ {
			if x.RowIgnored(row) {
				rowSpan--
			}
		}

		seen := make(map[int]struct{})
		var buckets []int
		for row := r.Start.Row; row <= r.End.Row; row++ {
			for col := r.Start.Col; col <= r.End.Col; col++ {
				if row == r.Start.Row && col == r.Start.Col {
					continue
				}
				id, ok := g.Styles[address.Coordinate{Col: col, Row: row}]
				if !ok {
					continue
				}
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				buckets = append(buckets, id)
			}
		}
		sort.Ints(buckets)

		x.Merged[r.Start] = Record{
			RowSpan:      max(rowSpan, 1),
			ColSpan:      max(colSpan, 1),
			StyleBuckets: buckets,
		}
	}
	return x
}

// CoveredCells lists the non-owner coordinates of the given merge
// references in row-major order.
func CoveredCells(refs []string) []address.Coordinate {
	var out []address.Coordinate
	for _, r := range ParseRegions(refs) {
		for row := r.Start.Row; row <= r.End.Row; row++ {
			for col := r.Start.Col; col <= r.End.Col; col++ {
				if row == r.Start.Row && col == r.Start.Col {
					continue
				}
				out = append(out, address.Coordinate{Col: col, Row: row})
			}
		}
	}
	return out
}

func addTo(m map[int]map[int]struct{}, key, val int) {
	set, ok := m[key]
	if !ok {
		set = make(map[int]struct{})
		m[key] = set
	}
	set[val] = struct{}{}
}
