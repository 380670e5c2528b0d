package identity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// DisplayName normalizes a raw asset name for manifests: trimmed,
// whitespace collapsed, title-cased per word.
func DisplayName(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return titleCaser.String(strings.Join(fields, " "))
}

// FolderName converts a raw asset name into the CamelCase segment used in
// library folder names. Characters outside [A-Za-z0-9] split words.
func FolderName(raw string) string {
	var builder strings.Builder
	upperNext := true
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			if upperNext && r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			builder.WriteRune(r)
			upperNext = false
		case r >= '0' && r <= '9':
			builder.WriteRune(r)
			upperNext = true
		default:
			upperNext = true
		}
	}
	if builder.Len() == 0 {
		return "Asset"
	}
	return builder.String()
}
