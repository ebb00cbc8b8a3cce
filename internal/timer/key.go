package timer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/apperr"
)

// Key identifies the set boundary a rest timer belongs to: the rest after set
// Set of exercise Exercise, or the rest after the exercise's last set.
type Key struct {
	Exercise int
	Set      int
	Last     bool
}

// SetKey is the key for the rest that precedes set index set.
func SetKey(exercise, set int) Key {
	return Key{Exercise: exercise, Set: set}
}

// LastKey is the key for the rest after the final set of an exercise.
func LastKey(exercise int) Key {
	return Key{Exercise: exercise, Last: true}
}

func (k Key) Valid() bool {
	if k.Exercise < 0 {
		return false
	}
	return k.Last || k.Set >= 0
}

// String renders "ex-set" or "last-ex".
func (k Key) String() string {
	if k.Last {
		return "last-" + strconv.Itoa(k.Exercise)
	}
	return strconv.Itoa(k.Exercise) + "-" + strconv.Itoa(k.Set)
}

func ParseKey(s string) (Key, error) {
	const op = "parse timer key"
	if rest, ok := strings.CutPrefix(s, "last-"); ok {
		ex, err := strconv.Atoi(rest)
		if err != nil || ex < 0 {
			return Key{}, apperr.Validation(op, "bad exercise index in %q", s)
		}
		return LastKey(ex), nil
	}
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return Key{}, apperr.Validation(op, "%q is neither ex-set nor last-ex", s)
	}
	ex, err1 := strconv.Atoi(a)
	set, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil || ex < 0 || set < 0 {
		return Key{}, apperr.Validation(op, "bad indices in %q", s)
	}
	return SetKey(ex, set), nil
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(b []byte) error {
	parsed, err := ParseKey(string(b))
	if err != nil {
		return fmt.Errorf("timer key: %w", err)
	}
	*k = parsed
	return nil
}
