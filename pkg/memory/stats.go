package memory

import "sort"

// TopEntityCount is the number of entities reported in MemoryStats.TopEntities.
const TopEntityCount = 5

type entityCount struct {
	name  string
	count int
}

// ComputeStats aggregates sentiment counts and the most frequent entities.
//
// Entities are compared by exact value. Ties keep the order in which the
// entity was first seen while walking memories front to back. Any sentiment
// other than positive or negative is counted as neutral, so the three counts
// always sum to the total.
func ComputeStats(memories []Memory) MemoryStats {
	stats := MemoryStats{
		TotalMemories: len(memories),
		TopEntities:   []string{},
	}

	index := make(map[string]int)
	var counts []entityCount

	for _, m := range memories {
		switch m.Sentiment {
		case Positive:
			stats.PositiveCount++
		case Negative:
			stats.NegativeCount++
		default:
			stats.NeutralCount++
		}

		for _, e := range m.Entities {
			if i, ok := index[e]; ok {
				counts[i].count++
				continue
			}
			index[e] = len(counts)
			counts = append(counts, entityCount{name: e, count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})

	n := len(counts)
	if n > TopEntityCount {
		n = TopEntityCount
	}
	for _, c := range counts[:n] {
		stats.TopEntities = append(stats.TopEntities, c.name)
	}

	return stats
}
