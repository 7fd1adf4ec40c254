package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is a record's severity.
type Level int

const (
	// LevelNone means the header carried no recognizable level.
	LevelNone Level = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelNotice
	LevelWarning
	LevelError
	LevelCritical
	LevelAlert
	LevelEmergency
	LevelFatal
)

var levelNames = map[Level]string{
	LevelNone:      "NONE",
	LevelTrace:     "TRACE",
	LevelDebug:     "DEBUG",
	LevelInfo:      "INFO",
	LevelNotice:    "NOTICE",
	LevelWarning:   "WARNING",
	LevelError:     "ERROR",
	LevelCritical:  "CRITICAL",
	LevelAlert:     "ALERT",
	LevelEmergency: "EMERGENCY",
	LevelFatal:     "FATAL",
}

var levelAliases = map[string]Level{
	"WARN": LevelWarning,
}

// Levels lists every real severity in ascending order (LevelNone excluded).
func Levels() []Level {
	return []Level{
		LevelTrace, LevelDebug, LevelInfo, LevelNotice, LevelWarning,
		LevelError, LevelCritical, LevelAlert, LevelEmergency, LevelFatal,
	}
}

// String returns the upper-case name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalJSON encodes the level by name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts any name ParseLevel accepts, plus NONE.
func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if strings.EqualFold(name, levelNames[LevelNone]) {
		*l = LevelNone
		return nil
	}
	parsed, ok := ParseLevel(name)
	if !ok {
		return fmt.Errorf("unknown level %q", name)
	}
	*l = parsed
	return nil
}

// ParseLevel matches s against the known level names, ignoring case and
// surrounding space. NONE is not a parseable level.
func ParseLevel(s string) (Level, bool) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if l, ok := levelAliases[name]; ok {
		return l, true
	}
	for _, l := range Levels() {
		if levelNames[l] == name {
			return l, true
		}
	}
	return LevelNone, false
}
