package xl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"

	"github.com/adnsv/xlstream/opc"
)

// Options configures a Workbook.
type Options struct {
	Logger  *slog.Logger
	AppName string // written to docProps/app.xml when set

	// CompressionLevel is the deflate level used by Create and
	// NewWorkbook, 1 (flate.BestSpeed) to 9 (flate.BestCompression). The
	// zero value selects flate.DefaultCompression, so
	// &Options{Logger: l} compresses normally.
	CompressionLevel int

	// Uncompressed stores parts without deflate; CompressionLevel is
	// ignored.
	Uncompressed bool

	// TempDir receives parts spooled while another part is streaming.
	TempDir string
}

// DefaultOptions returns the options used when nil is passed.
func DefaultOptions() *Options {
	return &Options{CompressionLevel: flate.DefaultCompression}
}

func (o *Options) level() int {
	switch {
	case o.Uncompressed:
		return flate.NoCompression
	case o.CompressionLevel == flate.NoCompression:
		return flate.DefaultCompression
	}
	return o.CompressionLevel
}

// Workbook is a forward-only SpreadsheetML writer. Styles are created up
// front, worksheets are streamed one row at a time, and Close writes the
// shared strings, styles and workbook manifest.
//
// Separate worksheets may be written from separate goroutines; a single
// worksheet may not.
type Workbook struct {
	AppName string

	mu         sync.Mutex
	pkg        *opc.Package
	file       io.Closer
	log        *slog.Logger
	styles     *StyleTable
	strings    *SharedStrings
	sheets     []sheetMeta // manifest order
	sheetNames map[string]struct{}
	worksheets []*Worksheet // creation order
	closed     bool
	closeErr   error
}

type sheetMeta struct {
	id   int
	name string
}

// Create creates the file at path and returns a workbook writing into it.
// On any error the file content must be discarded.
func Create(path string, opts *Options) (*Workbook, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	wb := NewWorkbook(f, opts)
	wb.file = f
	return wb, nil
}

// NewWorkbook returns a workbook writing an .xlsx archive to w.
func NewWorkbook(w io.Writer, opts *Options) *Workbook {
	if opts == nil {
		opts = DefaultOptions()
	}
	return NewWorkbookStorage(opc.NewZipStorageLevel(w, opts.level()), opts)
}

// NewWorkbookStorage returns a workbook writing its parts into s, for
// example an opc.DirStorage for inspection.
func NewWorkbookStorage(s opc.Storage, opts *Options) *Workbook {
	if opts == nil {
		opts = DefaultOptions()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Workbook{
		AppName:    opts.AppName,
		pkg:        opc.New(s, &opc.Options{Logger: log, TempDir: opts.TempDir}),
		log:        log,
		styles:     newStyleTable(),
		strings:    newSharedStrings(),
		sheetNames: map[string]struct{}{},
	}
}

// Styles returns the style table of the workbook.
func (wb *Workbook) Styles() *StyleTable { return wb.styles }

// SharedStrings returns the shared string table of the workbook.
func (wb *Workbook) SharedStrings() *SharedStrings { return wb.strings }

// CreateFont, CreateFill and CreateStyle add entries to the style table.
// The table is written by Close; entries created after Close get ids but
// never reach the document, and no cell can use them since every
// worksheet is closed by then.
func (wb *Workbook) CreateFont() *Font   { return wb.styles.CreateFont() }
func (wb *Workbook) CreateFill() *Fill   { return wb.styles.CreateFill() }
func (wb *Workbook) CreateStyle() *Style { return wb.styles.CreateStyle() }

// CreateWorksheet appends a worksheet to the manifest.
func (wb *Workbook) CreateWorksheet(name string) (*Worksheet, error) {
	return wb.addWorksheet(name, -1)
}

// InsertWorksheet creates a worksheet and places it at position index of
// the manifest. Its id is still assigned in creation order.
func (wb *Workbook) InsertWorksheet(name string, index int) (*Worksheet, error) {
	if index < 0 {
		return nil, invalidArg("sheet index %d", index)
	}
	return wb.addWorksheet(name, index)
}

func (wb *Workbook) addWorksheet(name string, index int) (*Worksheet, error) {
	if err := validateSheetName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	wb.mu.Lock()
	defer wb.mu.Unlock()

	if wb.closed {
		return nil, ErrClosed
	}
	key := strings.ToLower(name)
	if _, exists := wb.sheetNames[key]; exists {
		return nil, invalidArg("duplicate sheet name '%s'", name)
	}
	if index > len(wb.sheets) {
		return nil, invalidArg("sheet index %d is past %d sheets", index, len(wb.sheets))
	}

	id := len(wb.sheets) + 1
	part, err := wb.pkg.CreatePart(sheetPartName(id), ctWorksheet)
	if err != nil {
		return nil, err
	}

	meta := sheetMeta{id: id, name: name}
	if index < 0 {
		wb.sheets = append(wb.sheets, meta)
	} else {
		wb.sheets = append(wb.sheets[:index], append([]sheetMeta{meta}, wb.sheets[index:]...)...)
	}
	wb.sheetNames[key] = struct{}{}

	ws := newWorksheet(wb, id, name, part)
	wb.worksheets = append(wb.worksheets, ws)
	wb.log.Debug("worksheet created", "name", name, "id", id, "spooled", part.Spooled())
	return ws, nil
}

// SheetNames returns the sheet names in manifest order.
func (wb *Workbook) SheetNames() []string {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	names := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		names[i] = s.name
	}
	return names
}

func sheetPartName(id int) string {
	return "/xl/worksheets/sheet" + strconv.Itoa(id) + ".xml"
}

// Close finishes the document: open worksheets are closed, then the shared
// strings, styles, workbook manifest, document properties and
// relationships are written and the package is closed. Nothing can be
// written afterwards. It is safe to call more than once; later calls
// return the error of the first.
func (wb *Workbook) Close() error {
	wb.mu.Lock()
	if wb.closed {
		err := wb.closeErr
		wb.mu.Unlock()
		return err
	}
	wb.closed = true
	worksheets := wb.worksheets
	sheets := append([]sheetMeta(nil), wb.sheets...)
	wb.mu.Unlock()

	err := wb.finish(worksheets, sheets)
	if wb.file != nil {
		err = errors.Join(err, wb.file.Close())
	}
	if err == nil {
		wb.log.Debug("workbook closed", "sheets", len(sheets),
			"sharedStrings", wb.strings.Len())
	}

	wb.mu.Lock()
	wb.closeErr = err
	wb.mu.Unlock()
	return err
}

func (wb *Workbook) finish(worksheets []*Worksheet, sheets []sheetMeta) error {
	var errs []error
	for _, ws := range worksheets {
		if err := ws.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sheet %q: %w", ws.name, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if err := wb.writePart(partSharedStrings, ctSharedStrings, func(w io.Writer) error {
		wb.strings.writeTo(w)
		return nil
	}); err != nil {
		return err
	}
	if err := wb.writePart(partStyles, ctStyles, wb.styles.writeTo); err != nil {
		return err
	}
	if err := wb.writePart(partWorkbook, ctWorkbook, func(w io.Writer) error {
		writeWorkbookManifest(w, sheets)
		return nil
	}); err != nil {
		return err
	}

	for _, s := range sheets {
		if _, err := wb.pkg.Relate(partWorkbook, sheetPartName(s.id), opc.RelTypeWorksheet, sheetRelID(s.id)); err != nil {
			return err
		}
	}
	if _, err := wb.pkg.Relate(partWorkbook, partSharedStrings, opc.RelTypeSharedStrings, ""); err != nil {
		return err
	}
	if _, err := wb.pkg.Relate(partWorkbook, partStyles, opc.RelTypeStyles, ""); err != nil {
		return err
	}
	if _, err := wb.pkg.Relate("", partWorkbook, opc.RelTypeOfficeDocument, ""); err != nil {
		return err
	}

	if err := wb.writeDocProps(); err != nil {
		return err
	}

	return wb.pkg.Close()
}

func (wb *Workbook) writeDocProps() error {
	created := time.Now().UTC()
	if err := wb.writePart(partCore, ctCore, func(w io.Writer) error {
		writeCoreProperties(w, created)
		return nil
	}); err != nil {
		return err
	}
	if _, err := wb.pkg.Relate("", partCore, opc.RelTypeCoreProperties, ""); err != nil {
		return err
	}

	if err := wb.writePart(partApp, ctApp, func(w io.Writer) error {
		writeExtendedProperties(w, wb.AppName)
		return nil
	}); err != nil {
		return err
	}
	_, err := wb.pkg.Relate("", partApp, opc.RelTypeExtendedProperties, "")
	return err
}

// writePart creates a part, fills it and closes it.
func (wb *Workbook) writePart(name, contentType string, fill func(io.Writer) error) error {
	pt, err := wb.pkg.CreatePart(name, contentType)
	if err != nil {
		return err
	}
	err = fill(pt)
	return errors.Join(err, pt.Close())
}

func validateSheetName(s string) error {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return errors.New("empty sheet name is not allowed")
	} else if strings.TrimSpace(s) == "" {
		return errors.New("blank sheet name is not allowed")
	} else if n > 31 {
		return errors.New("the sheet name is too long")
	}
	if strings.HasPrefix(s, "'") || strings.HasSuffix(s, "'") {
		return errors.New("the first or last character of the sheet name can not be a single quote")
	}
	if strings.ContainsAny(s, ":\\/?*[]") {
		return errors.New("the sheet can not contain any of the characters :\\/?*[]")
	}
	if err := textError(s); err != nil {
		return fmt.Errorf("the sheet name %v", err)
	}
	return nil
}
