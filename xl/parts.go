package xl

import (
	"io"
	"strconv"
	"time"

	"github.com/adnsv/srw/xml"
)

const (
	nsMain = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRel  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

const (
	partWorkbook      = "/xl/workbook.xml"
	partSharedStrings = "/xl/sharedStrings.xml"
	partStyles        = "/xl/styles.xml"
	partCore          = "/docProps/core.xml"
	partApp           = "/docProps/app.xml"
)

const (
	ctWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctCore          = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp           = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

func sheetRelID(id int) string {
	return "rId" + strconv.Itoa(id)
}

func writeWorkbookManifest(w io.Writer, sheets []sheetMeta) {
	x := xml.NewWriter(w, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("workbook")
	x.Attr("xmlns", nsMain)
	x.Attr("xmlns:r", nsRel)

	x.OTag("+sheets")
	for _, sheet := range sheets {
		x.OTag("+sheet")
		x.Attr("name", sheet.name)
		x.Attr("sheetId", sheet.id)
		x.Attr("r:id", sheetRelID(sheet.id))
		x.CTag()
	}
	x.CTag()

	x.CTag()
}

func writeCoreProperties(w io.Writer, created time.Time) {
	x := xml.NewWriter(w, xml.WriterConfig{Indent: xml.Indent2Spaces})

	x.XmlStandaloneDecl()
	x.OTag("cp:coreProperties")
	x.Attr("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties")
	x.Attr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	x.Attr("xmlns:dcterms", "http://purl.org/dc/terms/")
	x.Attr("xmlns:dcmitype", "http://purl.org/dc/dcmitype/")
	x.Attr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")

	x.OTag("+dcterms:created")
	x.Attr("xsi:type", "dcterms:W3CDTF")
	x.Write(created.Format(time.RFC3339))
	x.CTag()

	x.CTag()
}

func writeExtendedProperties(w io.Writer, appname string) {
	x := xml.NewWriter(w, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("Properties")
	x.Attr("xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties")
	x.Attr("xmlns:vt", "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes")

	if appname != "" {
		x.OTag("+Application").String(appname).CTag()
	}

	x.CTag()
}
