package xl

import (
	"errors"
	"fmt"

	"github.com/adnsv/srw/xml"

	"github.com/adnsv/xlstream/opc"
)

// Hyperlink links a cell or range to a location inside the workbook,
// e.g. "'Other sheet'!A1".
type Hyperlink struct {
	Ref      string // "B2" or "B2:C4"
	Location string
	Display  string // optional

	relID string // set for external links
}

// Worksheet streams the rows of one sheet into its own package part.
// Rows are created strictly in order; a row must be closed before the next
// one is created.
type Worksheet struct {
	wb   *Workbook
	id   int
	name string
	part *opc.Part
	x    *xml.Writer

	lastRow    int // -1 until the first row
	row        *Row
	hyperlinks []Hyperlink
	closed     bool
}

func newWorksheet(wb *Workbook, id int, name string, part *opc.Part) *Worksheet {
	w := &Worksheet{
		wb:      wb,
		id:      id,
		name:    name,
		part:    part,
		lastRow: -1,
	}

	x := xml.NewWriter(part, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("worksheet")
	x.Attr("xmlns", nsMain)
	x.Attr("xmlns:r", nsRel)
	x.OTag("+sheetData")

	w.x = x
	return w
}

// Name returns the sheet name.
func (w *Worksheet) Name() string { return w.name }

// ID returns the sheet id, assigned in creation order starting at 1.
func (w *Worksheet) ID() int { return w.id }

// RowCount returns the number of rows created so far.
func (w *Worksheet) RowCount() int { return w.lastRow + 1 }

// CreateRow starts the next row.
func (w *Worksheet) CreateRow() (*Row, error) {
	if w.closed {
		return nil, fmt.Errorf("%w: sheet %q", ErrClosed, w.name)
	}
	if w.row != nil && !w.row.closed {
		return nil, protocolErr("sheet %q: row %d is still open", w.name, w.row.index+1)
	}
	if w.lastRow+1 >= MaxRows {
		return nil, protocolErr("sheet %q is full", w.name)
	}

	w.lastRow++
	r := &Row{sheet: w, index: w.lastRow, lastCol: -1}
	w.x.OTag("+row").Attr("r", r.index+1)
	w.row = r
	return r, w.part.Err()
}

// AppendRow writes values as the next row, one cell per value, converting
// each with ValueOf.
func (w *Worksheet) AppendRow(values ...any) error {
	r, err := w.CreateRow()
	if err != nil {
		return err
	}
	for _, v := range values {
		if _, err := r.WriteValue(v); err != nil {
			return errors.Join(err, r.Close())
		}
	}
	return r.Close()
}

// AddHyperlink records an internal hyperlink, written after the sheet data
// when the worksheet is closed.
func (w *Worksheet) AddHyperlink(h Hyperlink) error {
	if w.closed {
		return fmt.Errorf("%w: sheet %q", ErrClosed, w.name)
	}
	if err := validRange(h.Ref); err != nil {
		return err
	}
	if h.Location == "" {
		return invalidArg("hyperlink %s has no location", h.Ref)
	}
	if err := checkText("hyperlink location", h.Location); err != nil {
		return err
	}
	if err := checkText("hyperlink display", h.Display); err != nil {
		return err
	}
	h.relID = ""
	w.hyperlinks = append(w.hyperlinks, h)
	return nil
}

// AddExternalHyperlink records a hyperlink to a URI outside the workbook.
func (w *Worksheet) AddExternalHyperlink(ref, uri, display string) error {
	if w.closed {
		return fmt.Errorf("%w: sheet %q", ErrClosed, w.name)
	}
	if err := validRange(ref); err != nil {
		return err
	}
	if uri == "" {
		return invalidArg("hyperlink %s has no target", ref)
	}
	if err := checkText("hyperlink target", uri); err != nil {
		return err
	}
	if err := checkText("hyperlink display", display); err != nil {
		return err
	}
	id, err := w.wb.pkg.RelateExternal(w.part.Name(), uri, opc.RelTypeHyperlink)
	if err != nil {
		return err
	}
	w.hyperlinks = append(w.hyperlinks, Hyperlink{Ref: ref, Display: display, relID: id})
	return nil
}

// Close ends the sheet data, writes the hyperlinks and closes the part.
// An open row is closed first. It is safe to call more than once.
func (w *Worksheet) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var rowErr error
	if w.row != nil {
		rowErr = w.row.Close()
	}

	x := w.x
	x.CTag() // sheetData

	if len(w.hyperlinks) > 0 {
		x.OTag("+hyperlinks")
		for _, h := range w.hyperlinks {
			x.OTag("+hyperlink").Attr("ref", h.Ref)
			if h.relID != "" {
				x.Attr("r:id", h.relID)
			}
			if h.Location != "" {
				x.Attr("location", h.Location)
			}
			if h.Display != "" {
				x.Attr("display", h.Display)
			}
			x.CTag()
		}
		x.CTag()
	}

	x.CTag() // worksheet

	err := w.part.Close()
	w.wb.log.Debug("worksheet closed", "name", w.name, "id", w.id,
		"rows", w.lastRow+1, "hyperlinks", len(w.hyperlinks), "error", err)
	if rowErr != nil {
		return rowErr
	}
	return err
}
