// Package alpha imports Alpha Progression CSV exports into workout history.
package alpha

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Workout is one session block of an export.
type Workout struct {
	Name     string
	Date     time.Time
	Duration string // as exported, e.g. "1:02 hr"
	Moves    []Movement
}

// Movement is one exercise inside a Workout.
type Movement struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []Set
}

type Set struct {
	Number           int
	WeightKg         float64
	IsBodyweightPlus bool
	Reps             int
	RIR              float64
	IsWarmup         bool
}

var (
	// "Session Name";"2026-02-19 4:54 h";"1:02 hr"
	workoutHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// "1. Exercise Name · Equipment · 8 reps[· modifiers]"[;"warmup info"]
	movementHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// 1;115;8;1
	setRowRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.+)$`)

	// WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)

	durationRe = regexp.MustCompile(`^(\d+):(\d{2})\s*(?:hr|h)?$`)
)

const columnHeader = "#;KG;REPS;RIR"

type parser struct {
	out     []Workout
	workout *Workout
	move    *Movement
}

func (p *parser) closeMove() {
	if p.move != nil {
		p.workout.Moves = append(p.workout.Moves, *p.move)
		p.move = nil
	}
}

func (p *parser) closeWorkout() {
	if p.workout == nil {
		return
	}
	p.closeMove()
	p.out = append(p.out, *p.workout)
	p.workout = nil
}

func (p *parser) line(line string) error {
	switch {
	case line == "":
		p.closeWorkout()

	case line == columnHeader:

	case workoutHeaderRe.MatchString(line):
		m := workoutHeaderRe.FindStringSubmatch(line)
		p.closeWorkout()
		date, err := parseWorkoutDate(m[2])
		if err != nil {
			return err
		}
		p.workout = &Workout{Name: m[1], Date: date, Duration: m[3]}

	case movementHeaderRe.MatchString(line):
		m := movementHeaderRe.FindStringSubmatch(line)
		if p.workout == nil {
			return fmt.Errorf("exercise without session: %q", line)
		}
		p.closeMove()
		num, _ := strconv.Atoi(m[1])
		target, _ := strconv.Atoi(m[4])
		p.move = &Movement{
			Number:     num,
			Name:       strings.TrimSpace(m[2]),
			Equipment:  strings.TrimSpace(m[3]),
			TargetReps: target,
			Sets:       parseWarmups(m[6]),
		}

	case setRowRe.MatchString(line):
		m := setRowRe.FindStringSubmatch(line)
		if p.move == nil {
			return fmt.Errorf("set data without exercise: %q", line)
		}
		num, _ := strconv.Atoi(m[1])
		weight, bw := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		p.move.Sets = append(p.move.Sets, Set{
			Number:           num,
			WeightKg:         weight,
			IsBodyweightPlus: bw,
			Reps:             reps,
			RIR:              parseDecimalComma(m[4]),
		})
	}
	// Anything else is a note or metadata line.
	return nil
}

// Parse reads an Alpha Progression CSV export.
func Parse(r io.Reader) ([]Workout, error) {
	var p parser
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := p.line(strings.TrimSpace(sc.Text())); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	p.closeWorkout()
	return p.out, nil
}

// parseWorkoutDate accepts "2026-02-19 4:54" and "2026-02-19 16:54".
func parseWorkoutDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing session date %q", s)
}

// DurationMinutes reads "1:02 hr" as 62. It returns false for anything else.
func DurationMinutes(s string) (int, bool) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return h*60 + mins, true
}

// parseWarmups reads "WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps".
func parseWarmups(s string) []Set {
	if s == "" {
		return nil
	}
	var sets []Set
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		weight, bw := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, Set{Number: num, WeightKg: weight, IsBodyweightPlus: bw, Reps: reps, IsWarmup: true})
	}
	return sets
}

// parseWeight: "+35" is bodyweight plus 35, "102,5" is 102.5.
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		return parseDecimalComma(rest), true
	}
	return parseDecimalComma(s), false
}

func parseDecimalComma(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	return f
}
