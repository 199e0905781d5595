package xl

import (
	"fmt"
	"time"
)

// Row writes the cells of one row, left to right. Cells without an
// explicit reference take the column after the previous cell and are
// written without an r attribute.
type Row struct {
	sheet   *Worksheet
	index   int // 0-based
	lastCol int // -1 until the first cell
	cells   int
	closed  bool
}

// Index returns the 0-based row index.
func (r *Row) Index() int { return r.index }

// Write writes one cell and returns its reference.
func (r *Row) Write(v Value, opts ...CellOption) (string, error) {
	if r.closed {
		return "", fmt.Errorf("%w: row %d", ErrClosed, r.index+1)
	}
	cw, err := r.prepare(v, opts)
	if err != nil {
		return "", &CellError{Sheet: r.sheet.name, Ref: r.pendingRef(opts), Err: err}
	}
	cw.emit()
	if err := r.sheet.part.Err(); err != nil {
		return cw.ref, err
	}
	return cw.ref, nil
}

// pendingRef names the cell a failed write was aimed at.
func (r *Row) pendingRef(opts []CellOption) string {
	var spec cellSpec
	for _, o := range opts {
		o(&spec)
	}
	if spec.ref != "" {
		return spec.ref
	}
	if r.lastCol+1 < MaxColumns {
		return CellRef(r.index, r.lastCol+1)
	}
	return RowName(r.index)
}

func (r *Row) WriteEmpty(opts ...CellOption) (string, error) {
	return r.Write(Empty(), opts...)
}

// WriteInlineString stores s in the cell itself, bypassing the shared
// string table.
func (r *Row) WriteInlineString(s string, opts ...CellOption) (string, error) {
	return r.Write(InlineString(s), opts...)
}

// WriteString stores s in the shared string table and the index in the cell.
func (r *Row) WriteString(s string, opts ...CellOption) (string, error) {
	return r.Write(String(s), opts...)
}

func (r *Row) WriteInt(v int64, opts ...CellOption) (string, error) {
	return r.Write(Int(v), opts...)
}

func (r *Row) WriteFloat(v float64, opts ...CellOption) (string, error) {
	return r.Write(Float(v), opts...)
}

func (r *Row) WriteBool(v bool, opts ...CellOption) (string, error) {
	return r.Write(Bool(v), opts...)
}

// WriteTime writes t as a serial date. Pair it with a date style, the value
// is a plain number otherwise.
func (r *Row) WriteTime(t time.Time, opts ...CellOption) (string, error) {
	return r.Write(Time(t), opts...)
}

func (r *Row) WriteDuration(d time.Duration, opts ...CellOption) (string, error) {
	return r.Write(Duration(d), opts...)
}

// WriteValue writes a dynamically typed value, see ValueOf.
func (r *Row) WriteValue(v any, opts ...CellOption) (string, error) {
	val, err := ValueOf(v)
	if err != nil {
		return "", &CellError{Sheet: r.sheet.name, Ref: r.pendingRef(opts), Err: err}
	}
	return r.Write(val, opts...)
}

// Close ends the row element. It is safe to call more than once.
func (r *Row) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.sheet.x.CTag() // row
	return r.sheet.part.Err()
}
