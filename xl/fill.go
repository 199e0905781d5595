package xl

// Color is either unset, an ARGB hex value or an index into the legacy
// indexed palette.
type Color struct {
	rgb     string
	indexed int
	kind    colorKind
}

type colorKind uint8

const (
	colorUnset colorKind = iota
	colorRGB
	colorIndexed
)

// RGB returns a color given as ARGB hex, e.g. "FFFFFF00".
func RGB(hex string) Color {
	return Color{rgb: hex, kind: colorRGB}
}

// IndexedColor returns a color from the indexed palette (64 = system
// foreground).
func IndexedColor(n int) Color {
	return Color{indexed: n, kind: colorIndexed}
}

// IsSet reports whether c carries a color.
func (c Color) IsSet() bool { return c.kind != colorUnset }

// Fill is a solid pattern fill.
type Fill struct {
	Foreground Color
	Background Color

	id    int
	table *StyleTable
}

// ID returns the fill id. User fills start at 2; ids 0 and 1 are the
// mandatory "none" and "gray125" fills.
func (f *Fill) ID() int { return f.id }
