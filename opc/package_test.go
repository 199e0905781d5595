package opc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// memStorage records parts in creation order and fails if two entries are
// open at once.
type memStorage struct {
	t      *testing.T
	order  []string
	parts  map[string]*bytes.Buffer
	open   string
	closed bool
}

func newMemStorage(t *testing.T) *memStorage {
	return &memStorage{t: t, parts: map[string]*bytes.Buffer{}}
}

func (ms *memStorage) Create(name string) (io.WriteCloser, error) {
	if ms.open != "" {
		ms.t.Errorf("create %s while %s is open", name, ms.open)
	}
	ms.open = name
	ms.order = append(ms.order, name)
	buf := &bytes.Buffer{}
	ms.parts[name] = buf
	return &memEntry{ms: ms, Buffer: buf}, nil
}

func (ms *memStorage) Close() error {
	ms.closed = true
	return nil
}

type memEntry struct {
	ms *memStorage
	*bytes.Buffer
}

func (e *memEntry) Close() error {
	e.ms.open = ""
	return nil
}

func writePart(t *testing.T, p *Package, name, ct, body string) {
	t.Helper()
	pt, err := p.CreatePart(name, ct)
	if err != nil {
		t.Fatalf("CreatePart(%s): %v", name, err)
	}
	if _, err := io.WriteString(pt, body); err != nil {
		t.Fatal(err)
	}
	if err := pt.Close(); err != nil {
		t.Fatal(err)
	}
}

type xRels struct {
	Rels []struct {
		ID         string `xml:"Id,attr"`
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

type xTypes struct {
	Defaults []struct {
		Extension   string `xml:"Extension,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Default"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

func TestRelsPartName(t *testing.T) {
	tests := map[string]string{
		"":                          "/_rels/.rels",
		"/xl/workbook.xml":          "/xl/_rels/workbook.xml.rels",
		"/xl/worksheets/sheet1.xml": "/xl/worksheets/_rels/sheet1.xml.rels",
	}
	for src, want := range tests {
		if got := relsPartName(src); got != want {
			t.Errorf("relsPartName(%q) = %q, want %q", src, got, want)
		}
	}
}

func TestRelativeTarget(t *testing.T) {
	tests := []struct{ source, target, want string }{
		{"", "/xl/workbook.xml", "xl/workbook.xml"},
		{"/xl/workbook.xml", "/xl/worksheets/sheet1.xml", "worksheets/sheet1.xml"},
		{"/xl/workbook.xml", "/xl/styles.xml", "styles.xml"},
		{"/xl/workbook.xml", "/docProps/app.xml", "/docProps/app.xml"},
		{"/xl/workbook.xml", "/xlsx/other.xml", "/xlsx/other.xml"},
	}
	for _, tt := range tests {
		if got := relativeTarget(tt.source, tt.target); got != tt.want {
			t.Errorf("relativeTarget(%q, %q) = %q, want %q", tt.source, tt.target, got, tt.want)
		}
	}
}

func TestPackageLayout(t *testing.T) {
	ms := newMemStorage(t)
	p := New(ms, nil)

	writePart(t, p, "/xl/workbook.xml", "application/test.workbook", "<workbook/>")
	writePart(t, p, "/xl/worksheets/sheet1.xml", "application/test.sheet", "<worksheet/>")

	if _, err := p.Relate("", "/xl/workbook.xml", RelTypeOfficeDocument, ""); err != nil {
		t.Fatal(err)
	}
	id, err := p.Relate("/xl/workbook.xml", "/xl/worksheets/sheet1.xml", RelTypeWorksheet, "rId1")
	if err != nil || id != "rId1" {
		t.Fatalf("Relate = %q, %v", id, err)
	}
	if _, err := p.Relate("/xl/workbook.xml", "/xl/styles.xml", RelTypeStyles, "rId1"); err == nil {
		t.Error("duplicate relationship id accepted")
	}
	ext, err := p.RelateExternal("/xl/worksheets/sheet1.xml", "https://example.com/", RelTypeHyperlink)
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^R[0-9A-F]{16}$`).MatchString(ext) {
		t.Errorf("auto id = %q", ext)
	}
	if _, err := p.Relate("/xl/workbook.xml", "relative.xml", RelTypeStyles, ""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("relative target: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !ms.closed {
		t.Error("storage not closed")
	}

	var root xRels
	if err := xml.Unmarshal(ms.parts["/_rels/.rels"].Bytes(), &root); err != nil {
		t.Fatal(err)
	}
	if len(root.Rels) != 1 || root.Rels[0].Target != "xl/workbook.xml" || root.Rels[0].Type != RelTypeOfficeDocument {
		t.Errorf("root rels = %+v", root.Rels)
	}

	var wbRels xRels
	if err := xml.Unmarshal(ms.parts["/xl/_rels/workbook.xml.rels"].Bytes(), &wbRels); err != nil {
		t.Fatal(err)
	}
	if len(wbRels.Rels) != 1 || wbRels.Rels[0].ID != "rId1" || wbRels.Rels[0].Target != "worksheets/sheet1.xml" {
		t.Errorf("workbook rels = %+v", wbRels.Rels)
	}

	var sheetRels xRels
	if err := xml.Unmarshal(ms.parts["/xl/worksheets/_rels/sheet1.xml.rels"].Bytes(), &sheetRels); err != nil {
		t.Fatal(err)
	}
	if r := sheetRels.Rels; len(r) != 1 || r[0].ID != ext || r[0].TargetMode != "External" || r[0].Target != "https://example.com/" {
		t.Errorf("sheet rels = %+v", r)
	}

	var types xTypes
	if err := xml.Unmarshal(ms.parts["/[Content_Types].xml"].Bytes(), &types); err != nil {
		t.Fatal(err)
	}
	defaults := map[string]string{}
	for _, d := range types.Defaults {
		defaults[d.Extension] = d.ContentType
	}
	if defaults["rels"] != ContentTypeRelationships || defaults["xml"] != "application/xml" {
		t.Errorf("defaults = %v", defaults)
	}
	var overrides []string
	for _, o := range types.Overrides {
		overrides = append(overrides, o.PartName+"="+o.ContentType)
	}
	want := "/xl/workbook.xml=application/test.workbook,/xl/worksheets/sheet1.xml=application/test.sheet"
	if got := strings.Join(overrides, ","); got != want {
		t.Errorf("overrides = %s, want %s", got, want)
	}

	if last := ms.order[len(ms.order)-1]; last != "/[Content_Types].xml" {
		t.Errorf("last part = %s", last)
	}
}

func TestSpooling(t *testing.T) {
	ms := newMemStorage(t)
	p := New(ms, &Options{TempDir: t.TempDir()})

	a, err := p.CreatePart("/a.xml", "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.CreatePart("/b.xml", "")
	if err != nil {
		t.Fatal(err)
	}
	c, err := p.CreatePart("/c.xml", "")
	if err != nil {
		t.Fatal(err)
	}
	if a.Spooled() || !b.Spooled() || !c.Spooled() {
		t.Fatalf("spooled: a=%t b=%t c=%t", a.Spooled(), b.Spooled(), c.Spooled())
	}

	for i := 0; i < 3; i++ {
		for _, pt := range []*Part{a, b, c} {
			fmt.Fprintf(pt, "%s%d;", pt.Name(), i)
		}
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := ms.parts["/c.xml"]; ok {
		t.Error("spooled part flushed while another part streams")
	}
	if err := p.Close(); err == nil {
		t.Error("Close with open parts should fail")
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if got := ms.parts["/c.xml"].String(); got != "/c.xml0;/c.xml1;/c.xml2;" {
		t.Errorf("c = %q", got)
	}

	// nothing streams now, so a new part goes straight to storage
	d, err := p.CreatePart("/d.xml", "")
	if err != nil {
		t.Fatal(err)
	}
	if d.Spooled() {
		t.Error("d should stream")
	}
	io.WriteString(d, "d")
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(d, "late"); !errors.Is(err, ErrPartClosed) {
		t.Errorf("write after close: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := p.CreatePart("/e.xml", ""); !errors.Is(err, ErrClosed) {
		t.Errorf("CreatePart after Close: %v", err)
	}

	wantOrder := []string{"/a.xml", "/c.xml", "/d.xml", "/b.xml", "/[Content_Types].xml"}
	if got := strings.Join(ms.order, " "); got != strings.Join(wantOrder, " ") {
		t.Errorf("order = %s", got)
	}
	if got := ms.parts["/b.xml"].String(); got != "/b.xml0;/b.xml1;/b.xml2;" {
		t.Errorf("b = %q", got)
	}
}

func TestCreatePartNames(t *testing.T) {
	p := New(newMemStorage(t), nil)
	for _, name := range []string{"", "a.xml", "/dir/"} {
		if _, err := p.CreatePart(name, ""); !errors.Is(err, ErrInvalidName) {
			t.Errorf("CreatePart(%q) error = %v", name, err)
		}
	}
	writePart(t, p, "/a.xml", "", "a")
	if _, err := p.CreatePart("/a.xml", ""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("duplicate part: %v", err)
	}
}

func TestZipStorage(t *testing.T) {
	for _, level := range []int{flate.NoCompression, flate.BestSpeed, flate.DefaultCompression} {
		var buf bytes.Buffer
		p := New(NewZipStorageLevel(&buf, level), nil)
		writePart(t, p, "/xl/workbook.xml", "application/test", strings.Repeat("<x/>", 100))
		if err := p.Close(); err != nil {
			t.Fatal(err)
		}

		zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		wantMethod := zip.Deflate
		if level == flate.NoCompression {
			wantMethod = zip.Store
		}
		names := map[string]bool{}
		for _, f := range zr.File {
			names[f.Name] = true
			if f.Method != wantMethod {
				t.Errorf("level %d: %s method %d", level, f.Name, f.Method)
			}
		}
		for _, n := range []string{"xl/workbook.xml", "[Content_Types].xml"} {
			if !names[n] {
				t.Errorf("level %d: missing %s", level, n)
			}
		}
	}
}
