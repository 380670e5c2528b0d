package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

// TileTokens lists the recognized tile placeholder spellings. The uppercase
// form is canonical; the lowercase form appears in legacy scenes. Extend
// here if sample data surfaces more spellings.
var TileTokens = []string{"<UDIM>", "<udim>"}

// tileGlob matches the four-digit tile addresses (1001, 1002, ...).
const tileGlob = "[1-9][0-9][0-9][0-9]"

var tileIndexPattern = regexp.MustCompile(`^[1-9][0-9]{3}$`)

// TileToken returns the tile token present in raw, if any.
func TileToken(raw string) (string, bool) {
	for _, token := range TileTokens {
		if strings.Contains(raw, token) {
			return token, true
		}
	}
	return "", false
}

// frameTokenPattern matches the frame placeholder: $F for an unpadded frame
// number, $F<n> for one zero-padded to n digits.
var frameTokenPattern = regexp.MustCompile(`\$F([1-9])?`)

// FrameToken returns the frame token present in raw and its pad width
// (0 for unpadded $F).
func FrameToken(raw string) (token string, pad int, ok bool) {
	match := frameTokenPattern.FindStringSubmatch(raw)
	if match == nil {
		return "", 0, false
	}
	if match[1] != "" {
		pad, _ = strconv.Atoi(match[1])
	}
	return match[0], pad, true
}

// HasToken reports whether raw contains any recognized pattern token.
func HasToken(raw string) bool {
	if _, ok := TileToken(raw); ok {
		return true
	}
	_, _, ok := FrameToken(raw)
	return ok
}
