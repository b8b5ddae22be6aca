// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package runner

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/danielhkuo/priors/models"
)

var (
	ErrNoTrials         = errors.New("trial set is empty")
	ErrComplete         = errors.New("all trials already submitted")
	ErrRatingOutOfRange = fmt.Errorf("rating must be between %d and %d", models.SliderMin, models.SliderMax)
)

// Clock supplies timestamps for reaction times
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock uses time.Now, which carries a monotonic reading
var SystemClock Clock = systemClock{}

// Outcome describes what a Submit did.
type Outcome struct {
	Advanced  bool
	Completed bool
	Results   []models.ResultRecord // set when Completed
}

// Runner walks a participant through their trials, one slider rating each.
// It is not safe for concurrent use.
type Runner struct {
	clock   Clock
	results []models.ResultRecord
	current int // 0-based index of the trial awaiting input
	start   time.Time
	slider  int
	moved   bool
	done    bool
}

// New starts the first trial of trials. The trial start time is taken now.
func New(trials models.TrialSet, clock Clock) (*Runner, error) {
	ordered, err := trials.Ordered()
	if err != nil {
		return nil, err
	}
	if len(ordered) == 0 {
		return nil, ErrNoTrials
	}
	if clock == nil {
		clock = SystemClock
	}

	results := make([]models.ResultRecord, len(ordered))
	for i, t := range ordered {
		results[i] = models.ResultRecord{Stim1: t.Stim1}
	}

	return &Runner{
		clock:   clock,
		results: results,
		start:   clock.Now(),
		slider:  models.SliderDefault,
	}, nil
}

// Move records a slider input event and enables submission.
func (r *Runner) Move(value int) error {
	if r.done {
		return ErrComplete
	}
	if value < models.SliderMin || value > models.SliderMax {
		return ErrRatingOutOfRange
	}
	r.slider = value
	r.moved = true
	return nil
}

// Submit records the slider value and reaction time for the current trial
// and advances. It does nothing unless the slider moved since the last submit.
func (r *Runner) Submit() (Outcome, error) {
	if r.done {
		return Outcome{}, ErrComplete
	}
	if !r.moved {
		return Outcome{}, nil
	}

	now := r.clock.Now()
	rt := now.Sub(r.start).Milliseconds()
	if rt < 0 {
		rt = 0
	}
	rating := r.slider

	rec := &r.results[r.current]
	rec.Rating = &rating
	rec.RT = &rt

	r.slider = models.SliderDefault
	r.moved = false

	if r.current == len(r.results)-1 {
		r.done = true
		return Outcome{Advanced: true, Completed: true, Results: r.Results()}, nil
	}

	r.current++
	r.start = now
	return Outcome{Advanced: true}, nil
}

// View returns the render state of the current trial.
func (r *Runner) View() models.TrialView {
	total := len(r.results)
	index := r.current + 1
	pct, label := Progress(index, total)

	return models.TrialView{
		Prompt:        Prompt(r.results[r.current].Stim1),
		Stimulus:      r.results[r.current].Stim1,
		Index:         index,
		Total:         total,
		SliderValue:   r.slider,
		SubmitEnabled: r.moved && !r.done,
		ProgressPct:   pct,
		ProgressLabel: label,
		Complete:      r.done,
	}
}

// Results returns a copy of the result records collected so far.
func (r *Runner) Results() []models.ResultRecord {
	out := make([]models.ResultRecord, len(r.results))
	for i, rec := range r.results {
		out[i] = models.ResultRecord{Stim1: rec.Stim1}
		if rec.Rating != nil {
			v := *rec.Rating
			out[i].Rating = &v
		}
		if rec.RT != nil {
			v := *rec.RT
			out[i].RT = &v
		}
	}
	return out
}

// Complete reports whether every trial has been submitted.
func (r *Runner) Complete() bool {
	return r.done
}

// Prompt renders the question for a stimulus.
func Prompt(stim string) string {
	return fmt.Sprintf(models.PromptTemplate, stim)
}

// Progress returns the bar width percentage and "index/total" label.
// total must be positive.
func Progress(index, total int) (int, string) {
	pct := int(math.Round(100 * float64(index) / float64(total)))
	return pct, fmt.Sprintf("%d/%d", index, total)
}
