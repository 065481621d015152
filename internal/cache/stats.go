package cache

// Stats are the raw counters of one namespace, or their sum.
type Stats struct {
	Namespace string  `json:"namespace,omitempty"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Errors    uint64  `json:"errors"`
	HitRate   float64 `json:"hit_rate"`
}

func newStats(namespace string, hits, misses, errors uint64) Stats {
	s := Stats{
		Namespace: namespace,
		Hits:      hits,
		Misses:    misses,
		Errors:    errors,
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}

// Summary is the statistics block of the health endpoint.
type Summary struct {
	Namespaces []Stats        `json:"namespaces"`
	Total      Stats          `json:"total"`
	Backend    map[string]any `json:"backend"`
}
