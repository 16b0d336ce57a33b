package match

import "sort"

// MinSuggestScore is the lowest NameSimilarity a known name needs to be suggested.
const MinSuggestScore = 0.6

// maxSuggestions caps how many names Suggest returns.
const maxSuggestions = 3

type scored struct {
	name  string
	score float64
}

// Suggest returns the known names closest to name, best first. Names equal to
// name are skipped; an empty result means nothing is close enough.
func Suggest(name string, known []string) []string {
	var hits []scored

	for _, k := range known {
		if k == name {
			continue
		}

		s := NameSimilarity(name, k)
		if s < MinSuggestScore {
			continue
		}

		hits = append(hits, scored{name: k, score: s})
	}

	// Sort by score (descending), then by name for determinism.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}

		return hits[i].name < hits[j].name
	})

	if len(hits) > maxSuggestions {
		hits = hits[:maxSuggestions]
	}

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.name)
	}

	if len(out) == 0 {
		return nil
	}

	return out
}
