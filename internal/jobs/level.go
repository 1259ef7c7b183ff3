package jobs

import "strings"

// Level is the declared seniority of a posting.
type Level string

const (
	LevelEntry     Level = "entry"
	LevelMid       Level = "mid"
	LevelSenior    Level = "senior"
	LevelExecutive Level = "executive"
)

// Band is a range of years of experience, inclusive on both ends.
type Band struct {
	Min float64
	Max float64
}

var bands = map[Level]Band{
	LevelEntry:     {Min: 0, Max: 2},
	LevelMid:       {Min: 2, Max: 5},
	LevelSenior:    {Min: 5, Max: 10},
	LevelExecutive: {Min: 10, Max: 20},
}

// ParseLevel accepts the canonical names and a few common spellings.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entry", "entry-level", "entry level", "junior", "intern", "graduate":
		return LevelEntry, true
	case "mid", "mid-level", "mid level", "middle", "intermediate":
		return LevelMid, true
	case "senior", "senior-level", "lead":
		return LevelSenior, true
	case "executive", "director", "principal", "head":
		return LevelExecutive, true
	default:
		return "", false
	}
}

// Band returns the years range of the level. Unknown levels report false.
func (l Level) Band() (Band, bool) {
	level, ok := ParseLevel(string(l))
	if !ok {
		return Band{}, false
	}
	return bands[level], true
}
