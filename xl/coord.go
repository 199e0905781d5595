package xl

import (
	"strconv"
	"strings"
)

// Sheet limits of the SpreadsheetML format.
const (
	MaxColumns = 16384   // A..XFD
	MaxRows    = 1048576 // 1..1048576
)

// ColumnName returns the letters of the zero-based column index:
// 0 is "A", 25 is "Z", 26 is "AA", 701 is "ZZ".
func ColumnName(col int) string {
	if col < 0 || col >= MaxColumns {
		panic("invalid column index")
	}
	var buf [3]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// RowName returns the textual, 1-based form of a zero-based row index.
func RowName(row int) string {
	if row < 0 {
		panic("invalid row index")
	}
	return strconv.Itoa(row + 1)
}

// CellRef returns the A1-style reference of a zero-based (row, col) pair.
func CellRef(row, col int) string {
	return ColumnName(col) + RowName(row)
}

// ColumnIndex returns the zero-based column index encoded by the leading
// letters of ref. Anything after the letters is ignored, so "AB12" and "AB"
// both yield 27.
func ColumnIndex(ref string) (int, error) {
	col, n := scanColumn(ref)
	if n == 0 {
		return 0, invalidArg("cell reference %q has no column", ref)
	}
	if col < 0 {
		return 0, invalidArg("column of %q is out of range", ref)
	}
	return col, nil
}

// SplitRef parses a full cell reference such as "C7" into zero-based
// column and row indexes.
func SplitRef(ref string) (col, row int, err error) {
	col, err = ColumnIndex(ref)
	if err != nil {
		return 0, 0, err
	}
	_, n := scanColumn(ref)
	digits := ref[n:]
	if digits == "" || digits[0] == '0' || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, 0, invalidArg("cell reference %q has no valid row", ref)
	}
	r, err := strconv.Atoi(digits)
	if err != nil || r > MaxRows {
		return 0, 0, invalidArg("row of %q is out of range", ref)
	}
	return col, r - 1, nil
}

// validRange accepts "A1" or "A1:C3".
func validRange(ref string) error {
	first, last, isRange := strings.Cut(ref, ":")
	if _, _, err := SplitRef(first); err != nil {
		return err
	}
	if isRange {
		if _, _, err := SplitRef(last); err != nil {
			return err
		}
	}
	return nil
}

// scanColumn reads leading ASCII letters. It returns the zero-based column
// (-1 when past XFD) and the number of letters consumed.
func scanColumn(ref string) (col, n int) {
	v := 0
	for n < len(ref) {
		c := ref[n]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		default:
			return finishColumn(v, n)
		}
		if v <= MaxColumns {
			v = v*26 + int(c-'A'+1)
		}
		n++
	}
	return finishColumn(v, n)
}

func finishColumn(v, n int) (int, int) {
	if v > MaxColumns {
		return -1, n
	}
	return v - 1, n
}
