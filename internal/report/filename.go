package report

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxTitleRunes bounds the title prefix of a file name.
const maxTitleRunes = 50

// fallbackTitle names documents whose title sanitizes to nothing.
const fallbackTitle = "analysis"

// Filename builds "{title}_{YYYY-MM-DD}_분석결과.md" from a video title.
//
// The title is NFC-normalized so decomposed Hangul from some platforms
// yields the same name, control characters are dropped, characters that
// are reserved on common file systems are replaced with "_", and the
// result is cut to 50 characters. The output is always a single path
// element.
func Filename(title string, date time.Time) string {
	return fmt.Sprintf("%s_%s_분석결과.md", sanitizeTitle(title), date.Format(dateLayout))
}

// sanitizeTitle returns the file-name-safe prefix for title.
func sanitizeTitle(title string) string {
	var sb strings.Builder
	for _, r := range norm.NFC.String(title) {
		switch {
		case unicode.IsControl(r):
			continue
		case strings.ContainsRune(`<>:"/\|?*`, r):
			sb.WriteRune('_')
		default:
			sb.WriteRune(r)
		}
	}

	runes := []rune(strings.TrimSpace(sb.String()))
	if len(runes) > maxTitleRunes {
		runes = runes[:maxTitleRunes]
	}
	// Windows rejects names ending in a dot or space, and a lone ".." would
	// escape the target directory.
	prefix := strings.TrimRight(string(runes), ". ")
	if prefix == "" {
		return fallbackTitle
	}
	return prefix
}
