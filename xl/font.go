package xl

// Font is a font entry of the style table, created with
// Workbook.CreateFont. Zero fields fall back to the workbook default.
type Font struct {
	Size          float64 // points; 0 keeps the default 11
	Bold          bool
	Italic        bool
	Underline     UnderlineType
	Strikethrough bool
	Color         string // ARGB hex such as "FFFF0000"; "" is automatic

	id    int
	table *StyleTable
}

// UnderlineType is an ST_UnderlineValues value.
type UnderlineType string

const (
	UnderlineNone             UnderlineType = ""
	UnderlineSingle           UnderlineType = "single"
	UnderlineDouble           UnderlineType = "double"
	UnderlineSingleAccounting UnderlineType = "singleAccounting"
	UnderlineDoubleAccounting UnderlineType = "doubleAccounting"
)

// ID returns the font id: its 1-based creation index. Id 0 is the
// workbook default font.
func (f *Font) ID() int { return f.id }

// IsDefault reports whether f changes nothing relative to the default font.
func (f *Font) IsDefault() bool {
	return f.Size == 0 && !f.Bold && !f.Italic &&
		f.Underline == UnderlineNone && !f.Strikethrough && f.Color == ""
}
