// Package sensor imports bar-speed sensor exports: one CSV row per rep.
package sensor

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/claude/vbtcoach/internal/models"
	"github.com/claude/vbtcoach/internal/vbt"
)

// Columns expected in the header row, in any order.
var requiredColumns = []string{"date", "exercise", "goal", "weight_kg", "set", "rep", "velocity"}

// columnAliases maps alternative header spellings to canonical column names.
var columnAliases = map[string]string{
	"weight":        "weight_kg",
	"kg":            "weight_kg",
	"set_number":    "set",
	"rep_number":    "rep",
	"mean_velocity": "velocity",
	"velocity_ms":   "velocity",
}

// Parse reads a sensor export and groups its reps into sessions (one per date,
// oldest first), sets (in first-seen order) and reps (by rep number).
// It also returns the number of data rows read.
//
// The delimiter is detected from the header: semicolon-separated exports may
// use decimal commas ("0,45").
func Parse(r io.Reader) ([]models.SensorSession, int, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, 0, fmt.Errorf("reading header: %w", err)
	}

	cr := csv.NewReader(br)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	if firstLine, _, _ := bytes.Cut(head, []byte("\n")); bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		cr.Comma = ';'
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("empty export")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, 0, err
	}

	b := newBuilder()
	rows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rows, fmt.Errorf("reading CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}
		rows++
		rep, err := parseRow(rec, cols)
		if err != nil {
			return nil, rows, fmt.Errorf("line %d: %w", line, err)
		}
		if err := b.add(rep); err != nil {
			return nil, rows, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return b.sessions(), rows, nil
}

type repRow struct {
	date     time.Time
	exercise string
	goal     vbt.Goal
	weightKg float64
	set      int
	rep      int
	velocity float64
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		cols[name] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRow(rec []string, cols map[string]int) (repRow, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var r repRow
	var err error
	if r.date, err = parseDate(field("date")); err != nil {
		return r, err
	}

	raw := field("exercise")
	if raw == "" {
		return r, fmt.Errorf("exercise is empty")
	}
	if canonical, ok := models.NormalizeExercise(raw); ok {
		r.exercise = canonical
	} else {
		r.exercise = strings.ToLower(raw)
	}

	if r.goal, err = vbt.ParseGoal(field("goal")); err != nil {
		return r, err
	}
	if r.weightKg, err = parseDecimal(field("weight_kg")); err != nil {
		return r, fmt.Errorf("weight_kg: %w", err)
	}
	if r.weightKg < 0 {
		return r, fmt.Errorf("weight_kg %v is negative", r.weightKg)
	}
	if r.set, err = parsePositive(field("set")); err != nil {
		return r, fmt.Errorf("set: %w", err)
	}
	if r.rep, err = parsePositive(field("rep")); err != nil {
		return r, fmt.Errorf("rep: %w", err)
	}
	if r.velocity, err = parseDecimal(field("velocity")); err != nil {
		return r, fmt.Errorf("velocity: %w", err)
	}
	if _, err := vbt.Classify(r.velocity); err != nil {
		return r, err
	}
	return r, nil
}

// parseDate accepts a plain date or an RFC 3339 timestamp; the time of day is dropped.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}

// parseDecimal accepts both "102.5" and "102,5". Inf and NaN are rejected.
func parseDecimal(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("want a positive integer, got %q", s)
	}
	return n, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

type setKey struct {
	exercise string
	set      int
}

type sessionBuilder struct {
	date  time.Time
	order []setKey
	sets  map[setKey]*models.SensorSet
}

type builder struct {
	byDate map[time.Time]*sessionBuilder
}

func newBuilder() *builder {
	return &builder{byDate: make(map[time.Time]*sessionBuilder)}
}

func (b *builder) add(r repRow) error {
	sb, ok := b.byDate[r.date]
	if !ok {
		sb = &sessionBuilder{date: r.date, sets: make(map[setKey]*models.SensorSet)}
		b.byDate[r.date] = sb
	}

	k := setKey{r.exercise, r.set}
	set, ok := sb.sets[k]
	if !ok {
		set = &models.SensorSet{
			Exercise:  r.exercise,
			Goal:      string(r.goal),
			WeightKg:  r.weightKg,
			SetNumber: r.set,
		}
		sb.sets[k] = set
		sb.order = append(sb.order, k)
	}
	if set.WeightKg != r.weightKg {
		return fmt.Errorf("%s set %d: weight changes within the set (%v vs %v kg)", r.exercise, r.set, set.WeightKg, r.weightKg)
	}
	if set.Goal != string(r.goal) {
		return fmt.Errorf("%s set %d: goal changes within the set (%s vs %s)", r.exercise, r.set, set.Goal, r.goal)
	}
	for _, existing := range set.Reps {
		if existing.Number == r.rep {
			return fmt.Errorf("%s set %d: duplicate rep %d", r.exercise, r.set, r.rep)
		}
	}
	set.Reps = append(set.Reps, models.SensorRep{Number: r.rep, Velocity: r.velocity})
	return nil
}

func (b *builder) sessions() []models.SensorSession {
	result := make([]models.SensorSession, 0, len(b.byDate))
	for _, sb := range b.byDate {
		s := models.SensorSession{Date: sb.date}
		for _, k := range sb.order {
			set := *sb.sets[k]
			sort.Slice(set.Reps, func(i, j int) bool { return set.Reps[i].Number < set.Reps[j].Number })
			s.Sets = append(s.Sets, set)
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}
