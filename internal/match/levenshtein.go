// Package match screens names against the flattened SDN list in memory,
// scoring each corpus name the way the warehouse screening query did:
// exact, near (edit distance), threshold (edit distance), phonetic (Soundex).
package match

// Distance returns the Levenshtein edit distance between a and b, counted in
// runes. Case matters; callers wanting case-insensitive distance fold their
// inputs first.
func Distance(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}
