package meta

import (
	"os"
	"strings"
	"unicode"
)

// expandEnvExpr substitutes every ${env.KEY} occurrence in location with the
// value of the environment variable KEY, empty when unset. Malformed
// expressions pass through literally.
func expandEnvExpr(location string) string {
	const prefix = "${env."
	var b strings.Builder
	i := 0
	for {
		at := strings.Index(location[i:], prefix)
		if at < 0 {
			b.WriteString(location[i:])
			break
		}
		b.WriteString(location[i : i+at])
		keyStart := i + at + len(prefix)

		keyEnd := strings.IndexByte(location[keyStart:], '}')
		if keyEnd < 0 {
			// unterminated expression, keep the rest as written
			b.WriteString(location[i+at:])
			break
		}
		key := location[keyStart : keyStart+keyEnd]
		if !validEnvKey(key) {
			// keep the prefix literally and rescan from right after it so a
			// later well-formed expression still expands
			b.WriteString(location[i+at : keyStart])
			i = keyStart
			continue
		}
		b.WriteString(os.Getenv(key))
		i = keyStart + keyEnd + 1
	}
	return b.String()
}

func validEnvKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
