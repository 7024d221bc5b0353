package model

import (
	"fmt"
	"strings"
)

// Level is one step of the course. The order of Levels is the progression order.
type Level string

const (
	LevelBasics       Level = "basics"
	LevelIntermediate Level = "intermediate"
	LevelPro          Level = "pro"
)

// Levels lists every level in progression order.
var Levels = []Level{LevelBasics, LevelIntermediate, LevelPro}

func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}

func (l Level) Valid() bool {
	return l.Index() >= 0
}

// Index returns the position of l in Levels, or -1.
func (l Level) Index() int {
	for i, lv := range Levels {
		if lv == l {
			return i
		}
	}
	return -1
}

// Next returns the level after l. ok is false for the last level.
func (l Level) Next() (Level, bool) {
	i := l.Index()
	if i < 0 || i == len(Levels)-1 {
		return "", false
	}
	return Levels[i+1], true
}

func (l Level) String() string {
	return string(l)
}
