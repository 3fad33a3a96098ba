package memory

import "sort"

// Reconcile pairs judgments with the memories they reference.
//
// Judgments whose id is not in memories are dropped. The result is ordered by
// descending score with ties kept in judgment order. Scores are passed through
// unchanged.
func Reconcile(judgments []Judgment, memories []Memory) []SearchResult {
	if len(judgments) == 0 || len(memories) == 0 {
		return []SearchResult{}
	}

	byID := make(map[string]int, len(memories))
	for i, m := range memories {
		if _, dup := byID[m.ID]; !dup {
			byID[m.ID] = i
		}
	}

	results := make([]SearchResult, 0, len(judgments))
	for _, j := range judgments {
		i, ok := byID[j.ID]
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			Memory:          CloneMemory(memories[i]),
			RelevanceReason: j.Reason,
			RelevanceScore:  j.Score,
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].RelevanceScore > results[b].RelevanceScore
	})
	return results
}

// Texts returns the memory bodies of results in order.
func Texts(results []SearchResult) []string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Memory.Text
	}
	return texts
}
