package xl

import (
	"io"
	"strings"
	"sync"

	"github.com/adnsv/srw/xml"
)

// SharedStrings is the workbook-wide table of deduplicated cell text.
// Indexes are dense, 0-based, in first-seen order, and never reassigned.
// It is safe for concurrent use.
type SharedStrings struct {
	mu    sync.Mutex
	list  []string
	index map[string]int
}

func newSharedStrings() *SharedStrings {
	return &SharedStrings{index: map[string]int{}}
}

// Index returns the index of s, adding s to the table on first use.
func (ss *SharedStrings) Index(s string) int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if i, ok := ss.index[s]; ok {
		return i
	}
	i := len(ss.list)
	ss.list = append(ss.list, s)
	ss.index[s] = i
	return i
}

// Len returns the number of unique strings.
func (ss *SharedStrings) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.list)
}

// Strings returns a copy of the table in index order.
func (ss *SharedStrings) Strings() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]string(nil), ss.list...)
}

func (ss *SharedStrings) writeTo(w io.Writer) {
	list := ss.Strings()

	x := xml.NewWriter(w, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("sst")
	x.Attr("xmlns", nsMain)
	x.Attr("count", len(list))
	x.Attr("uniqueCount", len(list))

	for _, s := range list {
		x.OTag("+si")
		writeText(x, s)
		x.CTag()
	}

	x.CTag()
}

// writeText writes a <t> element. Edge whitespace is marked for
// preservation, otherwise consumers may collapse it.
func writeText(x *xml.Writer, s string) {
	x.OTag("t")
	if needsPreserve(s) {
		x.Attr("xml:space", "preserve")
	}
	x.String(s)
	x.CTag()
}

func needsPreserve(s string) bool {
	const ws = " \t\r\n"
	return s != "" && (strings.IndexByte(ws, s[0]) >= 0 || strings.IndexByte(ws, s[len(s)-1]) >= 0)
}
