package utils

// CreateRankList returns the ranks 1..count for results that are already
// sorted best first. Ranks saturate at the largest uint16.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := range ranks {
		if i+1 > int(^uint16(0)) {
			ranks[i] = ^uint16(0)
			continue
		}
		ranks[i] = uint16(i + 1)
	}
	return ranks
}
