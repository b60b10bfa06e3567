package index

import (
	"strconv"
	"strings"

	"github.com/agenthands/cardmatch/internal/core/model"
)

// CardText is the string a reference card is embedded from: name, effect,
// crew names, type, power and cost, space-separated, skipping empty values.
// A nil power or cost is skipped; zero is kept.
//
// Changing this changes every cached vector.
func CardText(c model.Card) string {
	parts := []string{
		c.Name,
		c.Effect,
		strings.Join(c.CrewNames(), " "),
		c.Type,
		formatInt(c.Power),
		formatInt(c.Cost),
	}
	return joinNonEmpty(parts)
}

// QueryText is the string an extracted query is embedded from: name,
// description, tribe and type. Unlike CardText it has no power or cost.
func QueryText(q model.ExtractedQuery) string {
	return joinNonEmpty([]string{q.Name, q.Description, q.Tribe, q.Type})
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
