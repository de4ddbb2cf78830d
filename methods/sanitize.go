package methods

import (
	"regexp"
	"strconv"
	"strings"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9\sáéíóúÁÉÍÓÚñÑ]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeFileName strips characters that break filesystems and archive
// entries, collapses whitespace to underscores and caps the length.
func SanitizeFileName(name string) string {
	clean := unsafeFileChars.ReplaceAllString(name, "")
	clean = whitespaceRun.ReplaceAllString(strings.TrimSpace(clean), "_")
	if len(clean) > 50 {
		clean = clean[:50]
	}
	return clean
}

// ColumnLetter converts a 1-indexed column number to its spreadsheet letter
// ("A", "B", ... "AA").
func ColumnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}

// CellRef builds an "A1"-style reference from 1-indexed column and row.
func CellRef(col, row int) string {
	return ColumnLetter(col) + strconv.Itoa(row)
}
