// Command csv2xlsx streams CSV files into an .xlsx workbook, one sheet per
// input file.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/klauspost/compress/flate"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/adnsv/xlstream/xl"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil {
		logger.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

// converter holds the per-run settings shared by all input files.
type converter struct {
	enc       encoding.Encoding
	typed     bool
	header    bool
	bold      *xl.Style
	dateStyle *xl.Style
}

func Main() error {
	encName := os.Getenv("LANG")
	if i := strings.IndexByte(encName, '.'); i >= 0 {
		encName = strings.ToLower(encName[i+1:])
	}
	if encName == "" {
		encName = "utf-8"
	}

	fs := flag.NewFlagSet("csv2xlsx", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagEnc := fs.String("charset", encName, "csv charset name")
	flagTyped := fs.Bool("typed", false, "write numbers and ISO dates as typed cells")
	flagHeader := fs.Bool("header", true, "first csv record is a bold header row")
	flagLevel := fs.Int("compression", flate.DefaultCompression, "deflate level (0 = store)")
	flagApp := fs.String("app-name", "csv2xlsx", "application name recorded in the document")

	app := ffcli.Command{Name: "csv2xlsx", FlagSet: fs,
		ShortUsage: "csv2xlsx [flags] output.xlsx [sheet:]input.csv...",
		Options:    []ff.Option{ff.WithEnvVarPrefix("CSV2XLSX")},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) < 1 {
				return flag.ErrHelp
			}
			enc, err := getEncoding(*flagEnc)
			if err != nil {
				return err
			}
			logger.Debug("encoding", "charset", *flagEnc, "decoder", enc != nil)

			wb, err := xl.Create(args[0], &xl.Options{
				Logger:           logger,
				AppName:          *flagApp,
				CompressionLevel: *flagLevel,
				Uncompressed:     *flagLevel == flate.NoCompression,
			})
			if err != nil {
				return err
			}
			cv := newConverter(wb, enc, *flagTyped, *flagHeader)

			inputs := args[1:]
			if len(inputs) == 0 {
				inputs = []string{"-"}
			}
			for i, fn := range inputs {
				if err := ctx.Err(); err != nil {
					return errors.Join(err, wb.Close())
				}
				sheetName, fn := sheetNameFor(i, fn)
				if err := cv.copyFile(wb, sheetName, fn); err != nil {
					return errors.Join(fmt.Errorf("%q: %w", fn, err), wb.Close())
				}
			}
			return wb.Close()
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return app.ParseAndRun(ctx, os.Args[1:])
}

func newConverter(wb *xl.Workbook, enc encoding.Encoding, typed, header bool) *converter {
	cv := &converter{enc: enc, typed: typed, header: header}
	if header {
		font := wb.CreateFont()
		font.Bold = true
		cv.bold = wb.CreateStyle()
		cv.bold.Font = font
	}
	if typed {
		cv.dateStyle = wb.CreateStyle()
		cv.dateStyle.NumberFormat = xl.FormatDate
	}
	return cv
}

// sheetNameFor splits "name:file" arguments; a plain file name gives its
// base name without the .csv suffix.
func sheetNameFor(i int, fn string) (string, string) {
	sheetName := fmt.Sprintf("Sheet%d", i+1)
	if j := strings.IndexByte(fn, ':'); j >= 0 {
		sheetName, fn = fn[:j], fn[j+1:]
	} else if fn != "" && fn != "-" {
		sheetName = strings.TrimSuffix(filepath.Base(fn), ".csv")
	}
	return sheetName, fn
}

func getEncoding(encName string) (encoding.Encoding, error) {
	encName = strings.ToLower(encName)
	if encName == "" || encName == "utf-8" || encName == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		err = fmt.Errorf("%q: %w", encName, err)
	}
	return enc, err
}

func (cv *converter) copyFile(wb *xl.Workbook, sheetName, fn string) error {
	fh := os.Stdin
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Open(fn); err != nil {
			return fmt.Errorf("open %q: %w", fn, err)
		}
		defer fh.Close()
	}
	return cv.copyReader(wb, sheetName, fh)
}

func (cv *converter) copyReader(wb *xl.Workbook, sheetName string, r io.Reader) error {
	if cv.enc != nil {
		r = cv.enc.NewDecoder().Reader(r)
	}
	cr, err := newCSVReader(r)
	if err != nil {
		return err
	}

	ws, err := wb.CreateWorksheet(sheetName)
	if err != nil {
		return err
	}
	defer ws.Close()

	var n int
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err := cv.writeRecord(ws, rec, n == 0 && cv.header); err != nil {
			return err
		}
		n++
	}
	logger.Info("sheet written", "sheet", sheetName, "rows", n)
	return ws.Close()
}

func (cv *converter) writeRecord(ws *xl.Worksheet, rec []string, isHeader bool) error {
	row, err := ws.CreateRow()
	if err != nil {
		return err
	}
	for _, s := range rec {
		if err := cv.writeField(row, s, isHeader); err != nil {
			return errors.Join(err, row.Close())
		}
	}
	return row.Close()
}

func (cv *converter) writeField(row *xl.Row, s string, isHeader bool) error {
	s = xl.CleanText(s)
	var err error
	switch {
	case isHeader:
		_, err = row.WriteString(s, xl.WithStyle(cv.bold))
	case s == "":
		_, err = row.WriteEmpty()
	case !cv.typed:
		_, err = row.WriteString(s)
	default:
		if i, perr := strconv.ParseInt(s, 10, 64); perr == nil {
			_, err = row.WriteInt(i)
		} else if f, perr := strconv.ParseFloat(s, 64); perr == nil && !strings.ContainsAny(s, "nNiI") {
			_, err = row.WriteFloat(f)
		} else if t, perr := time.ParseInLocation("2006-01-02", s, time.Local); perr == nil {
			_, err = row.WriteTime(t, xl.WithStyle(cv.dateStyle))
		} else {
			_, err = row.WriteString(s)
		}
	}
	return err
}

// newCSVReader sniffs the separator: the first rune of the first line
// that cannot be part of a plain field.
func newCSVReader(r io.Reader) (*csv.Reader, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	b, err := br.Peek(1024)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	sep := rune(',')
	for _, r := range string(b) {
		if r == '\n' || r == '\r' {
			break
		}
		if isFieldRune(r) {
			continue
		}
		sep = r
		break
	}
	logger.Debug("csv", "separator", string(sep))

	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.Comma = sep
	return cr, nil
}

func isFieldRune(r rune) bool {
	switch r {
	case '"', '_', ' ', '.', '-', '+', '/', ':', '\'':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
