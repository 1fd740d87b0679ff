package cache

// Stats 汇总缓存的命中、写入与淘汰计数。
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Inserts     uint64 `json:"inserts"`
	Removes     uint64 `json:"removes"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
	Sweeps      uint64 `json:"sweeps"`
	Entries     int    `json:"entries"`
	MaxSize     int    `json:"max_size"`
}

// HitRate 返回 hits / (hits + misses)，无访问时为 0。
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
