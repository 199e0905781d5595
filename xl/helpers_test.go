package xl

import (
	"bytes"
	"encoding/xml"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/xuri/excelize/v2"
)

// build runs fill against a fresh in-memory workbook and returns the
// closed archive.
func build(t *testing.T, fill func(wb *Workbook)) []byte {
	t.Helper()
	var buf bytes.Buffer
	wb := NewWorkbook(&buf, nil)
	fill(wb)
	if err := wb.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func readPart(t *testing.T, archive []byte, name string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return b
	}
	t.Fatalf("part %s not found", name)
	return nil
}

func partNames(t *testing.T, archive []byte) map[string]bool {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	return names
}

func openExcelize(t *testing.T, archive []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(archive))
	if err != nil {
		t.Fatalf("excelize: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

type xWorksheet struct {
	Rows       []xRow       `xml:"sheetData>row"`
	Hyperlinks []xHyperlink `xml:"hyperlinks>hyperlink"`
}

type xRow struct {
	R     int     `xml:"r,attr"`
	Cells []xCell `xml:"c"`
}

type xCell struct {
	R  *string `xml:"r,attr"`
	S  string  `xml:"s,attr"`
	T  string  `xml:"t,attr"`
	V  *string `xml:"v"`
	IS *struct {
		T xText `xml:"t"`
	} `xml:"is"`
}

type xText struct {
	Space string `xml:"http://www.w3.org/XML/1998/namespace space,attr"`
	Text  string `xml:",chardata"`
}

type xHyperlink struct {
	Ref      string  `xml:"ref,attr"`
	Location string  `xml:"location,attr"`
	Display  *string `xml:"display,attr"`
	RID      string  `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type xWorkbook struct {
	Sheets []struct {
		Name    string `xml:"name,attr"`
		SheetID int    `xml:"sheetId,attr"`
		RID     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sheets>sheet"`
}

type xRelationships struct {
	Rels []struct {
		ID         string `xml:"Id,attr"`
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

func decodePart[T any](t *testing.T, archive []byte, name string) T {
	t.Helper()
	var v T
	if err := xml.Unmarshal(readPart(t, archive, name), &v); err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return v
}
