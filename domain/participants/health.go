package participants

import (
	"regexp"
	"strconv"
	"strings"
)

var healthPattern = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)

var digitConfusions = strings.NewReplacer(
	"O", "0", "o", "0", "Q", "0", "D", "0",
	"I", "1", "l", "1", "i", "1", "L", "1", "|", "1",
	"S", "5", "s", "5",
	"B", "8",
	"Z", "2", "z", "2",
	"G", "6",
	`\`, "/",
	",", "",
)

// ParseHealth extracts "current/max" from recognized text after mapping digit
// look-alikes. Readings without a separator or with current above max are
// rejected.
func ParseHealth(text string) (Health, bool) {
	m := healthPattern.FindStringSubmatch(digitConfusions.Replace(text))
	if m == nil {
		return Health{}, false
	}
	cur, err := strconv.Atoi(m[1])
	if err != nil {
		return Health{}, false
	}
	maxHP, err := strconv.Atoi(m[2])
	if err != nil || cur > maxHP {
		return Health{}, false
	}
	return Health{Current: cur, Max: maxHP}, true
}
