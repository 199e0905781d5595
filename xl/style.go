package xl

// Style is a cell format: a combination of font, fill, number format and
// horizontal alignment. Font and Fill must come from the same workbook.
type Style struct {
	Font         *Font
	Fill         *Fill
	NumberFormat NumberFormat
	Horizontal   HorizontalAlignment

	id    int
	table *StyleTable
}

// ID returns the 1-based style id written to the s attribute of cells.
// Id 0 is the default cell format.
func (s *Style) ID() int { return s.id }

// HorizontalAlignment of cell content (ST_HorizontalAlignment).
type HorizontalAlignment int

const (
	AlignNone HorizontalAlignment = iota
	AlignGeneral
	AlignLeft
	AlignCenter
	AlignRight
	AlignFill
	AlignJustify
	AlignCenterContinuous
	AlignDistributed
)

var alignmentNames = [...]string{
	AlignNone:             "",
	AlignGeneral:          "general",
	AlignLeft:             "left",
	AlignCenter:           "center",
	AlignRight:            "right",
	AlignFill:             "fill",
	AlignJustify:          "justify",
	AlignCenterContinuous: "centerContinuous",
	AlignDistributed:      "distributed",
}

// String returns the attribute value, "" for AlignNone.
func (a HorizontalAlignment) String() string {
	if a < 0 || int(a) >= len(alignmentNames) {
		return ""
	}
	return alignmentNames[a]
}
