// Package normalize maps source-specific activity labels onto the canonical
// ice-time taxonomy. The matching logic is centralized here; each source
// adapter supplies its own label vocabulary as a TypeMap.
package normalize

import (
	"strings"

	"github.com/icetimehq/icetime-api/internal/models"
)

// TypeMap is a source-specific mapping from raw label to canonical type.
type TypeMap map[string]models.IceTimeType

// Exact looks sourceLabel up in the map and returns the mapped type, or
// OTHER when absent. Matching is exact: case and whitespace variance is not
// smoothed over, because API-backed sources use a small stable label set.
func Exact(sourceLabel string, m TypeMap) models.IceTimeType {
	if t, ok := m[sourceLabel]; ok {
		return t
	}
	return models.TypeOther
}

// Contains is the fuzzy variant for scraped titles whose labels vary in
// decoration ("Friday Night Public Skate!"). The longest map entry contained
// in the lowercased title wins, so the most specific label matches first;
// equal-length candidates fall to the lexicographically smaller key, keeping
// the result independent of map iteration order.
func Contains(sourceTitle string, m TypeMap) models.IceTimeType {
	lower := strings.ToLower(sourceTitle)

	best := models.TypeOther
	bestNeedle := ""
	for label, t := range m {
		needle := strings.ToLower(label)
		if needle == "" || !strings.Contains(lower, needle) {
			continue
		}
		if len(needle) > len(bestNeedle) || (len(needle) == len(bestNeedle) && needle < bestNeedle) {
			best = t
			bestNeedle = needle
		}
	}
	return best
}
