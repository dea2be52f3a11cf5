// Package progression models an enrolled student's walk through a course's lessons.
//
// Each lesson card is Locked, Accessible or Completed. Initial states mirror the backend's
// completed/accessible flags. A card only becomes Completed after the backend confirms the
// completion call, and at that point the single next card unlocks if it was locked.
package progression

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/models"
)

// Completer records a lesson completion on the backend
type Completer interface {
	CompleteLesson(ctx context.Context, authCtx auth.AuthContext, lessonID int64) error
}

// Card is one lesson in the viewer
type Card struct {
	Lesson models.LessonView `json:"lesson"`
	State  State             `json:"state"`
	// Pending is set while a completion call for the card is in flight
	Pending bool `json:"pending"`
}

// Actionable reports whether the card offers the mark-complete control
func (c Card) Actionable() bool {
	return c.State == Accessible && !c.Pending
}

// Transition describes what a confirmed completion changed
type Transition struct {
	Completed int64 `json:"completed"`
	// Unlocked is the successor that became accessible, nil when none did
	Unlocked *int64 `json:"unlocked,omitempty"`
	// NoOp is set when the lesson was already completed
	NoOp bool `json:"noOp,omitempty"`
}

// Tracker holds the card states of one course view
type Tracker struct {
	mu    sync.Mutex
	cards []Card
	index map[int64]int
}

// NewTracker builds the cards from the backend snapshot, ordered by lessonOrder.
// When the snapshot carries no flags at all (nothing completed, nothing accessible)
// the linear unlock rule is applied so the first lesson is reachable
func NewTracker(lessons []models.LessonView) *Tracker {
	sorted := make([]models.LessonView, len(lessons))
	copy(sorted, lessons)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LessonOrder < sorted[j].LessonOrder
	})

	t := &Tracker{
		cards: make([]Card, len(sorted)),
		index: make(map[int64]int, len(sorted)),
	}

	flagged := false
	for _, l := range sorted {
		if l.Completed || l.Accessible {
			flagged = true
			break
		}
	}

	completed := make([]bool, len(sorted))
	for i, l := range sorted {
		completed[i] = l.Completed
	}
	derived := Derive(completed)

	for i, l := range sorted {
		state := derived[i]
		if flagged {
			state = stateFromFlags(l)
		}
		t.cards[i] = Card{Lesson: l, State: state}
		t.index[l.ID] = i
	}
	return t
}

func stateFromFlags(l models.LessonView) State {
	switch {
	case l.Completed:
		return Completed
	case l.Accessible:
		return Accessible
	default:
		return Locked
	}
}

// Cards returns a snapshot of the cards in order
func (t *Tracker) Cards() []Card {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Card, len(t.cards))
	copy(out, t.cards)
	return out
}

// State returns the state of a lesson
func (t *Tracker) State(lessonID int64) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index[lessonID]
	if !ok {
		return Locked, false
	}
	return t.cards[i].State, true
}

// Progress counts completed cards in the current snapshot
func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := Progress{Total: len(t.cards)}
	for _, c := range t.cards {
		if c.State == Completed {
			p.Completed++
		}
	}
	return p
}

// Complete marks an accessible lesson complete through the backend. The card changes only once
// the call succeeds, and then the immediate successor unlocks if it was locked. On failure the
// card stays accessible and can be retried. Completing a completed lesson does nothing
func (t *Tracker) Complete(ctx context.Context, authCtx auth.AuthContext, lessonID int64, completer Completer) (Transition, error) {
	if err := authCtx.Require(); err != nil {
		return Transition{}, err
	}

	t.mu.Lock()
	i, ok := t.index[lessonID]
	if !ok {
		t.mu.Unlock()
		return Transition{}, apperr.Validation(fmt.Sprintf("lesson %d is not part of this course", lessonID))
	}
	card := &t.cards[i]
	switch {
	case card.State == Completed:
		t.mu.Unlock()
		return Transition{Completed: lessonID, NoOp: true}, nil
	case card.State == Locked:
		t.mu.Unlock()
		return Transition{}, apperr.Validation("this lesson is locked until the previous lesson is completed")
	case card.Pending:
		t.mu.Unlock()
		return Transition{}, apperr.Validation("this lesson is already being completed")
	}
	card.Pending = true
	t.mu.Unlock()

	err := completer.CompleteLesson(ctx, authCtx, lessonID)

	t.mu.Lock()
	defer t.mu.Unlock()
	card = &t.cards[i]
	card.Pending = false
	if err != nil {
		card.State = Accessible
		return Transition{}, err
	}

	card.State = Completed
	card.Lesson.Completed = true
	tr := Transition{Completed: lessonID}
	if i+1 < len(t.cards) && t.cards[i+1].State == Locked {
		next := &t.cards[i+1]
		next.State = Accessible
		next.Lesson.Accessible = true
		id := next.Lesson.ID
		tr.Unlocked = &id
	}
	return tr, nil
}
