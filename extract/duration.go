package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// ParseDuration converts strict "M:S" text to seconds. Any other number of
// colon separated fields, or a non-numeric field, is rejected.
func ParseDuration(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	m, ok := atoi(parts[0])
	if !ok || m < 0 {
		return 0, false
	}
	sec, ok := atoi(parts[1])
	if !ok || sec < 0 {
		return 0, false
	}
	return m*60 + sec, true
}

// FormatDuration renders seconds as "M:SS".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

var wildernessRe = regexp.MustCompile(`Kills: <col=[0-9a-fA-F]+>([0-9,]+)</col>.*?Deaths: <col=[0-9a-fA-F]+>([0-9,]+)</col>`)

// WildernessStats parses the text of the wilderness statistics board,
// for example "Kills: <col=ffffff>12</col><br>Deaths: <col=ffffff>3</col>".
func WildernessStats(text string) (kills, deaths int, ok bool) {
	m := wildernessRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	kills, ok = atoi(strings.ReplaceAll(m[1], ",", ""))
	if !ok {
		return 0, 0, false
	}
	deaths, ok = atoi(strings.ReplaceAll(m[2], ",", ""))
	if !ok {
		return 0, 0, false
	}
	return kills, deaths, true
}
