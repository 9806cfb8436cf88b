// Package palette maps chart series to colors. Palettes are fixed
// sets of eight hex colors; categories beyond the palette length wrap
// around.
package palette

import (
	"fmt"
	"sort"
)

// DefaultName is the palette used when a request does not pick one.
const DefaultName = "Floresta"

var palettes = map[string][]string{
	"Floresta":      {"#2d6a4f", "#40916c", "#52b788", "#95d5b2", "#7f5539", "#b08968", "#ddb892", "#ede0d4"},
	"Oceano":        {"#0077b6", "#00b4d8", "#90e0ef", "#ade8f4", "#caf0f8", "#03045e", "#023e8a", "#0096c7"},
	"Metrópole":     {"#212529", "#495057", "#adb5bd", "#003566", "#006d77", "#ffc300", "#6c757d", "#dee2e6"},
	"Vulcão":        {"#d00000", "#dc2f02", "#e85d04", "#f48c06", "#faa307", "#ffba08", "#9d0208", "#6a040f"},
	"Monocromático": {"#004d40", "#00796b", "#009688", "#4db6ac", "#80cbc4", "#b2dfdb", "#e0f2f1", "#64b5f6"},
}

// Names lists the available palettes in stable order.
func Names() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Colors returns the color cycle of the named palette.
func Colors(name string) ([]string, error) {
	colors, ok := palettes[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q", name)
	}
	return colors, nil
}

// Assign gives each category a color from the named palette, in the
// order the categories are listed, wrapping when there are more
// categories than colors.
func Assign(categories []string, name string) (map[string]string, error) {
	colors, err := Colors(name)
	if err != nil {
		return nil, err
	}
	assigned := make(map[string]string, len(categories))
	for i, category := range categories {
		assigned[category] = colors[i%len(colors)]
	}
	return assigned, nil
}
