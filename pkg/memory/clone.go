package memory

// CloneMemory returns a copy of m that shares no slices with it.
func CloneMemory(m Memory) Memory {
	clone := m
	if m.Entities != nil {
		clone.Entities = append([]string(nil), m.Entities...)
	}
	if m.Actions != nil {
		clone.Actions = append([]string(nil), m.Actions...)
	}
	if m.NamedEntities != nil {
		clone.NamedEntities = append([]NamedEntity(nil), m.NamedEntities...)
	}
	return clone
}

// CloneMemories deep-copies a collection. A nil input yields an empty slice.
func CloneMemories(memories []Memory) []Memory {
	out := make([]Memory, len(memories))
	for i, m := range memories {
		out[i] = CloneMemory(m)
	}
	return out
}

// CloneInteractions copies a collection. A nil input yields an empty slice.
func CloneInteractions(interactions []Interaction) []Interaction {
	return append(make([]Interaction, 0, len(interactions)), interactions...)
}

// CloneResults deep-copies search results.
func CloneResults(results []SearchResult) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = r
		out[i].Memory = CloneMemory(r.Memory)
	}
	return out
}

// RemoveMemory returns memories without the entry whose id matches, and
// whether such an entry existed. The input is not modified.
func RemoveMemory(memories []Memory, id string) ([]Memory, bool) {
	out := make([]Memory, 0, len(memories))
	found := false
	for _, m := range memories {
		if m.ID == id {
			found = true
			continue
		}
		out = append(out, m)
	}
	return out, found
}

// RemoveResult drops the result for the given memory id.
func RemoveResult(results []SearchResult, id string) []SearchResult {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if r.Memory.ID != id {
			out = append(out, r)
		}
	}
	return out
}
