package xl

import (
	"strconv"
)

// CellOption adjusts a single cell write.
type CellOption func(*cellSpec)

type cellSpec struct {
	ref   string
	style *Style
}

// WithRef places the cell at an explicit reference such as "D3". The
// reference must be on the current row and to the right of the last
// written cell.
func WithRef(ref string) CellOption {
	return func(c *cellSpec) { c.ref = ref }
}

// WithStyle applies a style created by the same workbook.
func WithStyle(s *Style) CellOption {
	return func(c *cellSpec) { c.style = s }
}

// cellWriter is one resolved <c> element. Everything that can fail is
// checked by prepare, so emit never leaves a cell element unterminated.
type cellWriter struct {
	row     *Row
	col     int
	ref     string
	style   *Style
	value   Value
	payload string
}

func (r *Row) prepare(v Value, opts []CellOption) (*cellWriter, error) {
	var spec cellSpec
	for _, o := range opts {
		o(&spec)
	}

	cw := &cellWriter{row: r, col: r.lastCol + 1, style: spec.style, value: v}
	if spec.ref != "" {
		col, row, err := SplitRef(spec.ref)
		if err != nil {
			return nil, err
		}
		if row != r.index {
			return nil, protocolErr("%s is not on row %d", spec.ref, r.index+1)
		}
		if col <= r.lastCol {
			return nil, protocolErr("%s is not right of column %s", spec.ref, ColumnName(r.lastCol))
		}
		cw.col = col
	}
	if cw.col >= MaxColumns {
		return nil, protocolErr("row %d is full", r.index+1)
	}
	cw.ref = CellRef(r.index, cw.col)

	if cw.style != nil && !r.sheet.wb.styles.owns(cw.style) {
		return nil, invalidArg("style %d belongs to another workbook", cw.style.id)
	}

	switch v.kind {
	case KindEmpty:
	case KindInlineString:
		if err := checkText("text", v.s); err != nil {
			return nil, err
		}
	case KindString:
		if err := checkText("text", v.s); err != nil {
			return nil, err
		}
		cw.payload = strconv.Itoa(r.sheet.wb.strings.Index(v.s))
	default:
		s, err := v.numeric()
		if err != nil {
			return nil, err
		}
		cw.payload = s
	}
	return cw, nil
}

func (cw *cellWriter) emit() {
	r := cw.row
	x := r.sheet.x

	x.OTag("+c")
	if cw.col != r.lastCol+1 {
		x.Attr("r", cw.ref)
	}
	if cw.style != nil {
		x.Attr("s", cw.style.id)
	}
	if t := cw.value.cellType(); t != "" {
		x.Attr("t", t)
	}

	switch cw.value.kind {
	case KindEmpty:
	case KindInlineString:
		x.OTag("is")
		writeText(x, cw.value.s)
		x.CTag()
	default:
		x.OTag("v").Write(cw.payload).CTag()
	}
	x.CTag() // c

	r.lastCol = cw.col
	r.cells++
}
