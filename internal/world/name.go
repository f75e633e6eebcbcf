package world

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxNameLength matches the leaderboard column width.
const MaxNameLength = 100

// NormalizeName trims a username and converts it to NFC so visually equal
// names compare equal on the leaderboard.
func NormalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}
