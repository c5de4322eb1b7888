package article

import "strings"

// SourceStats aggregates per-source corpus shape, mainly for run reports
// and the stats endpoint.
type SourceStats struct {
	Count    int `json:"count"`
	MaxWords int `json:"max_words"`
	MaxChars int `json:"max_chars"`
}

// ComputeStats tallies article counts and the largest body seen per
// source. Bodies follow BodyText selection (content, else description,
// else title).
func ComputeStats(items []Article) map[string]SourceStats {
	stats := make(map[string]SourceStats)
	for i := range items {
		body := items[i].BodyText()
		s := stats[items[i].Source]
		s.Count++
		if words := len(strings.Fields(body)); words > s.MaxWords {
			s.MaxWords = words
		}
		if chars := len(body); chars > s.MaxChars {
			s.MaxChars = chars
		}
		stats[items[i].Source] = s
	}
	return stats
}
