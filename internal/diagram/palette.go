package diagram

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Style holds the hex colors (without leading #) for one class: the edge
// stroke / node border color and the node fill.
type Style struct {
	Stroke string `toml:"stroke"`
	Fill   string `toml:"fill"`
}

// Palette maps every style class to its colors.
type Palette map[Class]Style

// DefaultPalette returns the built-in relation color scheme: red for
// blocking, blue for related, green for parent/child, gray otherwise.
func DefaultPalette() Palette {
	return Palette{
		ClassRoot:    {Stroke: "00AA00", Fill: "E6FFE6"},
		ClassBlocked: {Stroke: "FF0000", Fill: "FFCCCC"},
		ClassRelates: {Stroke: "0000FF", Fill: "CCE5FF"},
		ClassChild:   {Stroke: "00AA00", Fill: "E6FFE6"},
		ClassOther:   {Stroke: "666666", Fill: "FFFFFF"},
	}
}

// LoadPalette reads a TOML palette file and merges it over the defaults.
// The file maps class names to stroke/fill colors:
//
//	[blocked]
//	stroke = "CC0000"
//	fill = "FFDDDD"
//
// Unknown class names are rejected so typos do not silently fall through to
// defaults.
func LoadPalette(path string) (Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("diagram: read palette: %w", err)
	}

	var raw map[string]Style
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("diagram: parse palette %s: %w", path, err)
	}

	pal := DefaultPalette()
	for name, style := range raw {
		class := Class(name)
		if _, ok := pal[class]; !ok {
			return nil, fmt.Errorf("diagram: palette %s: unknown class %q", path, name)
		}
		merged := pal[class]
		if style.Stroke != "" {
			merged.Stroke = style.Stroke
		}
		if style.Fill != "" {
			merged.Fill = style.Fill
		}
		pal[class] = merged
	}
	return pal, nil
}
