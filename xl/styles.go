package xl

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/adnsv/srw/xml"
)

// StyleTable owns the fonts, fills and cell formats of a workbook and
// assigns their ids. Ids are permanent once assigned. It is safe for
// concurrent use.
type StyleTable struct {
	mu     sync.Mutex
	fonts  []*Font
	fills  []*Fill
	styles []*Style
}

// reserved entries emitted ahead of user entries
const (
	reservedFonts  = 1 // default
	reservedFills  = 2 // none, gray125
	reservedStyles = 1 // default xf
)

func newStyleTable() *StyleTable {
	return &StyleTable{}
}

// CreateFont appends a font with the next id (1, 2, ...).
func (st *StyleTable) CreateFont() *Font {
	st.mu.Lock()
	defer st.mu.Unlock()
	f := &Font{id: len(st.fonts) + reservedFonts, table: st}
	st.fonts = append(st.fonts, f)
	return f
}

// CreateFill appends a fill with the next id (2, 3, ...).
func (st *StyleTable) CreateFill() *Fill {
	st.mu.Lock()
	defer st.mu.Unlock()
	f := &Fill{id: len(st.fills) + reservedFills, table: st}
	st.fills = append(st.fills, f)
	return f
}

// CreateStyle appends a cell format with the next id (1, 2, ...).
func (st *StyleTable) CreateStyle() *Style {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := &Style{id: len(st.styles) + reservedStyles, table: st}
	st.styles = append(st.styles, s)
	return s
}

// owns reports whether s was created by this table.
func (st *StyleTable) owns(s *Style) bool {
	return s != nil && s.table == st
}

func (st *StyleTable) validate() error {
	for _, s := range st.styles {
		if s.Font != nil && s.Font.table != st {
			return invalidArg("style %d uses a font of another workbook", s.id)
		}
		if s.Fill != nil && s.Fill.table != st {
			return invalidArg("style %d uses a fill of another workbook", s.id)
		}
		if s.Horizontal < AlignNone || int(s.Horizontal) >= len(alignmentNames) {
			return invalidArg("style %d has unknown alignment %d", s.id, s.Horizontal)
		}
		if s.NumberFormat < 0 {
			return invalidArg("style %d has negative number format %d", s.id, s.NumberFormat)
		}
	}
	return nil
}

func (st *StyleTable) writeTo(w io.Writer) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.validate(); err != nil {
		return fmt.Errorf("styles: %w", err)
	}

	x := xml.NewWriter(w, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("styleSheet")
	x.Attr("xmlns", nsMain)

	x.OTag("+fonts").Attr("count", len(st.fonts)+reservedFonts)
	x.OTag("+font").CTag() // default font
	for _, f := range st.fonts {
		writeFont(x, f)
	}
	x.CTag()

	x.OTag("+fills").Attr("count", len(st.fills)+reservedFills)
	x.OTag("+fill").OTag("patternFill").Attr("patternType", "none").CTag().CTag()
	x.OTag("+fill").OTag("patternFill").Attr("patternType", "gray125").CTag().CTag()
	for _, f := range st.fills {
		writeFill(x, f)
	}
	x.CTag()

	x.OTag("+borders").Attr("count", 1)
	x.OTag("+border").CTag()
	x.CTag()

	x.OTag("+cellStyleXfs").Attr("count", 1)
	x.OTag("+xf").CTag()
	x.CTag()

	x.OTag("+cellXfs").Attr("count", len(st.styles)+reservedStyles)
	x.OTag("+xf").CTag() // default style
	for _, s := range st.styles {
		writeXf(x, s)
	}
	x.CTag()

	x.CTag() // styleSheet
	return nil
}

func writeFont(x *xml.Writer, f *Font) {
	x.OTag("+font")
	if f.IsDefault() {
		x.CTag()
		return
	}
	if f.Bold {
		x.OTag("b").CTag()
	}
	if f.Italic {
		x.OTag("i").CTag()
	}
	if f.Strikethrough {
		x.OTag("strike").CTag()
	}
	switch f.Underline {
	case UnderlineNone:
	case UnderlineSingle:
		x.OTag("u").CTag()
	default:
		x.OTag("u").Attr("val", string(f.Underline)).CTag()
	}
	if f.Size > 0 {
		x.OTag("sz").Attr("val", strconv.FormatFloat(f.Size, 'g', -1, 64)).CTag()
	}
	if f.Color != "" {
		x.OTag("color").Attr("rgb", f.Color).CTag()
	}
	x.CTag()
}

func writeFill(x *xml.Writer, f *Fill) {
	x.OTag("+fill")
	x.OTag("patternFill").Attr("patternType", "solid")
	if f.Foreground.IsSet() {
		x.OTag("fgColor")
		writeColorAttr(x, f.Foreground)
		x.CTag()
	}
	if f.Background.IsSet() {
		x.OTag("bgColor")
		writeColorAttr(x, f.Background)
		x.CTag()
	}
	x.CTag() // patternFill
	x.CTag() // fill
}

func writeColorAttr(x *xml.Writer, c Color) {
	switch c.kind {
	case colorIndexed:
		x.Attr("indexed", c.indexed)
	case colorRGB:
		x.Attr("rgb", c.rgb)
	}
}

func writeXf(x *xml.Writer, s *Style) {
	x.OTag("+xf")
	if s.NumberFormat != FormatNone {
		x.Attr("numFmtId", int(s.NumberFormat))
	}
	if s.Font != nil {
		x.Attr("fontId", s.Font.id)
	}
	if s.Fill != nil {
		x.Attr("fillId", s.Fill.id)
	}
	if s.NumberFormat != FormatNone {
		x.Attr("applyNumberFormat", 1)
	}
	if s.Font != nil {
		x.Attr("applyFont", 1)
	}
	if s.Fill != nil {
		x.Attr("applyFill", 1)
	}
	if s.Horizontal != AlignNone {
		x.Attr("applyAlignment", 1)
		x.OTag("alignment").Attr("horizontal", s.Horizontal.String()).CTag()
	}
	x.CTag()
}
