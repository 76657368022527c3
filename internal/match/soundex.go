package match

// soundexCodes maps A-Z to their American Soundex digit: 0 for vowels and Y
// (which reset the run), 7 for H and W (transparent, the run continues
// through them), 1-6 for coded consonants.
var soundexCodes = [26]byte{
	'A' - 'A': 0, 'E' - 'A': 0, 'I' - 'A': 0, 'O' - 'A': 0, 'U' - 'A': 0, 'Y' - 'A': 0,
	'H' - 'A': 7, 'W' - 'A': 7,
	'B' - 'A': 1, 'F' - 'A': 1, 'P' - 'A': 1, 'V' - 'A': 1,
	'C' - 'A': 2, 'G' - 'A': 2, 'J' - 'A': 2, 'K' - 'A': 2,
	'Q' - 'A': 2, 'S' - 'A': 2, 'X' - 'A': 2, 'Z' - 'A': 2,
	'D' - 'A': 3, 'T' - 'A': 3,
	'L' - 'A': 4,
	'M' - 'A': 5, 'N' - 'A': 5,
	'R' - 'A': 6,
}

// Soundex returns the four-character American Soundex key of s, e.g.
// "ROBERT" -> "R163". Non-ASCII-letter characters are skipped; an input with
// no letters keys to "". Inherently case-insensitive.
func Soundex(s string) string {
	var letters []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			letters = append(letters, c)
		case c >= 'a' && c <= 'z':
			letters = append(letters, c-'a'+'A')
		}
	}
	if len(letters) == 0 {
		return ""
	}

	key := make([]byte, 1, 4)
	key[0] = letters[0]
	prev := soundexCodes[letters[0]-'A']
	for _, c := range letters[1:] {
		d := soundexCodes[c-'A']
		switch {
		case d == 0:
			prev = 0
		case d == 7:
			// H and W do not break a run of identical codes.
		case d != prev:
			key = append(key, '0'+d)
			prev = d
		}
		if len(key) == 4 {
			break
		}
	}
	for len(key) < 4 {
		key = append(key, '0')
	}
	return string(key)
}
