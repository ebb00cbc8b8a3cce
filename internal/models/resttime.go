package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/apperr"
)

// DefaultRestTime is used when a plan does not configure a rest period.
const DefaultRestTime = "1:00"

var restTimeRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// ValidRestTime reports whether s has the "m:ss" / "mm:ss" shape.
func ValidRestTime(s string) bool {
	return restTimeRe.MatchString(s)
}

// ParseRestTime converts "m:ss" into seconds.
func ParseRestTime(s string) (int, error) {
	if !ValidRestTime(s) {
		return 0, apperr.Validation("parse rest time", "%q does not match mm:ss", s)
	}
	m, sec, _ := strings.Cut(s, ":")
	mins, _ := strconv.Atoi(m)
	secs, _ := strconv.Atoi(sec)
	return mins*60 + secs, nil
}

// FormatRestTime renders seconds as "m:ss". Negative values render as "0:00".
func FormatRestTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// RestTimeOr returns s, or fallback when s is empty. An empty fallback means DefaultRestTime.
func RestTimeOr(s, fallback string) string {
	switch {
	case s != "":
		return s
	case fallback != "":
		return fallback
	}
	return DefaultRestTime
}
