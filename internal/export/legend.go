package export

import (
	"fmt"
	"os"

	"github.com/leonelquinteros/gotext"

	"carve/internal/tilemap"
)

// defaultCatalog holds the English labels of the legend, keyed by cell type
// name.
const defaultCatalog = `
msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"
"Language: en\n"

msgid "solid"
msgstr "Solid rock"

msgid "empty"
msgstr "Air"

msgid "hookable"
msgstr "Hookable obstacle"

msgid "unhookable"
msgstr "Unhookable marker"

msgid "freeze"
msgstr "Freeze"

msgid "platform"
msgstr "Platform"

msgid "debug"
msgstr "Debug marker"
`

var glyphs = [tilemap.CellTypeCount]rune{
	tilemap.CellSolid:      '#',
	tilemap.CellEmpty:      '.',
	tilemap.CellHookable:   'o',
	tilemap.CellUnhookable: 'x',
	tilemap.CellFreeze:     '~',
	tilemap.CellPlatform:   '=',
	tilemap.CellDebug:      '!',
}

// Glyph returns the character used for t in text output.
func Glyph(t tilemap.CellType) rune {
	if t < tilemap.CellTypeCount {
		return glyphs[t]
	}
	return '?'
}

// Legend translates cell types into human readable labels.
type Legend struct {
	po *gotext.Po
}

// DefaultLegend returns the built-in English legend.
func DefaultLegend() *Legend {
	return ParseLegend([]byte(defaultCatalog))
}

// ParseLegend builds a legend from a gettext PO catalog. Types missing from
// the catalog fall back to their internal names.
func ParseLegend(data []byte) *Legend {
	po := gotext.NewPo()
	po.Parse(data)
	return &Legend{po: po}
}

// LoadLegend reads a PO catalog from disk.
func LoadLegend(path string) (*Legend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read legend: %w", err)
	}
	return ParseLegend(data), nil
}

// Label returns the display label of t.
func (l *Legend) Label(t tilemap.CellType) string {
	if l == nil || l.po == nil {
		return t.String()
	}
	// msgid lookup only (no format args), so call via a method value to keep
	// vet's printf check from treating the key as a format string.
	get := l.po.Get
	return get(t.String())
}
