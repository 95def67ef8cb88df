package domain

import "sort"

// ResultsByUser keeps results recorded for username, in insertion order.
func ResultsByUser(results []QuizResult, username string) []QuizResult {
	out := make([]QuizResult, 0)
	for _, r := range results {
		if SameName(r.Username, username) {
			out = append(out, r)
		}
	}
	return out
}

// TopScores returns up to n results ordered by score descending.
// Equal scores keep their insertion order.
func TopScores(results []QuizResult, n int) []QuizResult {
	if n <= 0 {
		return []QuizResult{}
	}
	sorted := make([]QuizResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
