// Package overflow measures how much of a page a piece of content occupies
// once rendered and decides whether it spills past the page capacity.
package overflow

import (
	"fmt"
	"math"
	"strings"
)

// PageSize describes a physical page in millimetres together with the size
// of one rendered cell.
type PageSize struct {
	HeightMM       float64
	WidthMM        float64
	MarginTopMM    float64
	MarginBottomMM float64
	MarginLeftMM   float64
	MarginRightMM  float64
	LineHeightMM   float64
	CellWidthMM    float64
}

const (
	inchMM           = 25.4
	defaultLineMM    = inchMM / 4
	defaultCellMM    = inchMM / 10
	defaultEmbedRows = 6
)

var (
	// A4 is ISO 216 A4 with one inch margins, four lines and ten columns per inch.
	A4 = PageSize{
		HeightMM: 297, WidthMM: 210,
		MarginTopMM: inchMM, MarginBottomMM: inchMM, MarginLeftMM: inchMM, MarginRightMM: inchMM,
		LineHeightMM: defaultLineMM, CellWidthMM: defaultCellMM,
	}
	// Letter is US Letter with one inch margins.
	Letter = PageSize{
		HeightMM: 279.4, WidthMM: 215.9,
		MarginTopMM: inchMM, MarginBottomMM: inchMM, MarginLeftMM: inchMM, MarginRightMM: inchMM,
		LineHeightMM: defaultLineMM, CellWidthMM: defaultCellMM,
	}
)

// Preset returns a named page size.
func Preset(name string) (PageSize, bool) {
	switch strings.ToLower(name) {
	case "a4", "":
		return A4, true
	case "letter":
		return Letter, true
	default:
		return PageSize{}, false
	}
}

// Capacity is the printable area in rendered rows and columns.
type Capacity struct {
	Rows int
	Cols int
}

// Capacity converts the printable area to rows and columns.
func (p PageSize) Capacity() (Capacity, error) {
	lineMM := p.LineHeightMM
	if lineMM <= 0 {
		lineMM = defaultLineMM
	}
	cellMM := p.CellWidthMM
	if cellMM <= 0 {
		cellMM = defaultCellMM
	}
	usableHeight := p.HeightMM - p.MarginTopMM - p.MarginBottomMM
	usableWidth := p.WidthMM - p.MarginLeftMM - p.MarginRightMM
	c := Capacity{
		Rows: int(math.Floor(usableHeight/lineMM + 1e-9)),
		Cols: int(math.Floor(usableWidth/cellMM + 1e-9)),
	}
	if c.Rows <= 0 || c.Cols <= 0 {
		return Capacity{}, fmt.Errorf("page %gx%gmm leaves no printable area (%d rows, %d cols)", p.WidthMM, p.HeightMM, c.Rows, c.Cols)
	}
	return c, nil
}
