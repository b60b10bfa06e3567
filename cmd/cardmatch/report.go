package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/agenthands/cardmatch/internal/core/model"
)

const defaultAPIBase = "http://localhost:8000"

func writeReport(w io.Writer, res *model.MatchResult, apiBase string, elapsed time.Duration) {
	best := res.Best
	fmt.Fprintf(w, "Elapsed: %.2f seconds\n", elapsed.Seconds())
	fmt.Fprintf(w, "Best match: %s (%s) with similarity %.4f\n", best.Card.Name, best.Card.Slug, best.Similarity)
	if best.Card.APIURL != "" {
		fmt.Fprintf(w, "API url: %s\n", rebaseURL(best.Card.APIURL, apiBase))
	}
	fmt.Fprintf(w, "Illustrations: %v\n", best.Card.IllustrationLinks())

	if len(res.Candidates) > 1 {
		label := "Possible cards"
		if res.Reranked {
			label += " (reranked)"
		}
		fmt.Fprintf(w, "%s:\n", label)
		for i, c := range res.Candidates {
			fmt.Fprintf(w, "  %d. %-10s %-30s %.4f\n", i+1, c.Card.Slug, c.Card.Name, c.Similarity)
		}
	}
}

// rebaseURL keeps the path of a dataset api_url and puts it under base.
// The dump was exported from a development host, so its host is useless.
func rebaseURL(raw, base string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Path == "" {
		return raw
	}
	return strings.TrimRight(base, "/") + u.Path
}

func describe(c model.ExtractedCard) string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	addInt := func(k string, v *int) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", k, *v))
		}
	}
	add("name", c.Name)
	add("type", c.Type)
	add("tribe", c.Tribe)
	addInt("cost", c.Cost)
	addInt("life", c.Life)
	addInt("attack", c.Attack)
	addInt("counter", c.Counter)
	add("description", c.Description)
	add("trigger", c.Trigger)
	if len(parts) == 0 {
		return "(nothing read)"
	}
	return strings.Join(parts, " ")
}
