package sheetorm

// MaxColumnLetters bounds column letters so ids stay well inside int range.
const MaxColumnLetters = 7

// ColumnLetters converts a 1-based column id to spreadsheet letters (1 -> A, 27 -> AA).
// Non-positive ids yield an empty string.
func ColumnLetters(id int) string {
	var buf []byte
	for block := id - 1; block >= 0; block = block/26 - 1 {
		buf = append(buf, byte('A'+block%26))
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// ColumnID converts spreadsheet letters to a 1-based column id (A -> 1, AA -> 27).
// Letters are case-insensitive; an empty, non-alphabetic or longer than
// MaxColumnLetters input yields 0.
func ColumnID(letters string) int {
	if len(letters) > MaxColumnLetters {
		return 0
	}
	result := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		switch {
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		case c >= 'A' && c <= 'Z':
		default:
			return 0
		}
		result = result*26 + int(c-'A') + 1
	}
	return result
}
