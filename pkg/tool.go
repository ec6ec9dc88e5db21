package pkg

// Contains check source have target
func Contains(slice []int64, val int64) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}

// Dedup collapse duplicate ids preserving first-seen order
func Dedup(slice []int64) []int64 {
	seen := make(map[int64]struct{}, len(slice))
	out := make([]int64, 0, len(slice))
	for _, v := range slice {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
