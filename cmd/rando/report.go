package main

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/rando-engine/pkg/world"
)

// report lists locations grouped by area and subarea.
func report(w *world.World, locations []world.Location) string {
	title := cases.Title(language.English)
	groups := make(map[string][]string)

	for _, loc := range locations {
		key := "Unknown"
		if ri, ok := w.RegionIndex(loc.RegionID); ok {
			r := w.Region(ri)
			key = areaLabel(title, r.Area, r.Subarea)
		}
		groups[key] = append(groups[key], loc.Name)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d possible locations:\n", len(locations))
	for _, k := range keys {
		names := groups[k]
		sort.Strings(names)
		fmt.Fprintf(&b, "  %s\n", k)
		for _, n := range names {
			fmt.Fprintf(&b, "    - %s\n", n)
		}
	}
	return b.String()
}

func areaLabel(title cases.Caser, area, subarea string) string {
	switch {
	case area == "":
		return "Unknown"
	case subarea == "":
		return title.String(area)
	default:
		return title.String(area) + " / " + title.String(subarea)
	}
}
