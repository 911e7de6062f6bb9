// Package interaction implements the state behind the keyword form: the typed
// text, its autocomplete suggestions, the single in-flight generation request
// and the dialogue it produced.
//
// The Controller is UI-agnostic. Front ends call InputChanged,
// SelectSuggestion and Submit in response to user events and redraw from
// State() (or from Subscribe callbacks) after every change.
package interaction

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"nihilistkernel/internal/logging"
)

const (
	// MaxInputLength bounds the typed text, in characters.
	MaxInputLength = 50

	// MaxSuggestions bounds the autocomplete list.
	MaxSuggestions = 3

	// ErrorDialogue replaces the dialogue whenever a submission fails. The
	// underlying error only goes to the log.
	ErrorDialogue = "Error: Could not generate dialogue. Check the backend."

	// DefaultTimeout bounds a submission when the caller sets none.
	DefaultTimeout = 60 * time.Second
)

// Generator sends the user's text to the generation endpoint and returns the
// dialogue it produced.
type Generator interface {
	Generate(ctx context.Context, userInput string) (string, error)
}

// Suggester returns up to limit catalog entries matching prefix.
// keywords.Catalog implements it.
type Suggester interface {
	Match(prefix string, limit int) []string
}

// State is a snapshot of the form.
type State struct {
	Input       string
	Dialogue    string
	Loading     bool
	Suggestions []string
}

// CharCount returns the number of characters in Input.
func (s State) CharCount() int {
	return utf8.RuneCountInString(s.Input)
}

func (s State) clone() State {
	s.Suggestions = append([]string(nil), s.Suggestions...)
	return s
}

// Controller owns the form state. It is safe for concurrent use; the
// submission goroutine and the UI goroutine both mutate it.
type Controller struct {
	suggester Suggester
	generator Generator
	timeout   time.Duration

	// notifyMu serializes mutate+notify so observers see states in the
	// order the mutations happened.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State
	observers map[int]func(State)
	nextObsID int
}

// NewController wires a controller to its keyword source and generator.
// A non-positive timeout selects DefaultTimeout.
func NewController(suggester Suggester, generator Generator, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Controller{
		suggester: suggester,
		generator: generator,
		timeout:   timeout,
		observers: make(map[int]func(State)),
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn to be called with the new state after every
// mutation. fn runs on the mutating goroutine and must not call back into
// the controller's mutating methods. The returned func unsubscribes.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// update applies fn under the lock and, if fn reports a change, notifies
// observers with the resulting snapshot.
func (c *Controller) update(fn func(*State) bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	changed := fn(&c.state)
	snapshot := c.state.clone()
	observers := make([]func(State), 0, len(c.observers))
	for _, obs := range c.observers {
		observers = append(observers, obs)
	}
	c.mu.Unlock()

	if !changed {
		return
	}
	for _, obs := range observers {
		obs(snapshot)
	}
}

// InputChanged stores raw (truncated to MaxInputLength characters) as the
// input and recomputes suggestions from the stored value.
func (c *Controller) InputChanged(raw string) {
	input := truncate(raw, MaxInputLength)
	var suggestions []string
	if input != "" {
		suggestions = c.suggester.Match(input, MaxSuggestions)
	}

	c.update(func(s *State) bool {
		s.Input = input
		s.Suggestions = suggestions
		return true
	})
}

// SelectSuggestion replaces the input with keyword and clears suggestions.
func (c *Controller) SelectSuggestion(keyword string) {
	input := truncate(keyword, MaxInputLength)
	c.update(func(s *State) bool {
		s.Input = input
		s.Suggestions = nil
		return true
	})
}

// Submit starts generating a dialogue for the current input. It returns nil
// without side effects when the trimmed input is empty or a submission is
// already in flight. The input is left as typed.
//
// The request runs on its own goroutine, bounded by the controller timeout;
// cancelling ctx or the returned Task aborts it. Either way Loading is
// cleared before the Task reports done.
func (c *Controller) Submit(ctx context.Context) *Task {
	var input string
	c.update(func(s *State) bool {
		if s.Loading || strings.TrimSpace(s.Input) == "" {
			return false
		}
		input = s.Input
		s.Loading = true
		s.Dialogue = ""
		return true
	})
	if input == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	task := newTask(input, cancel)
	logging.UIDebug("submission started: input=%q timeout=%v", input, c.timeout)

	go c.run(ctx, task)
	return task
}

func (c *Controller) run(ctx context.Context, task *Task) {
	defer task.cancel()

	timer := logging.StartTimer(logging.CategoryUI, "submission")
	dialogue, err := c.generate(ctx, task.input)
	timer.Stop()

	result := Result{Input: task.input, Dialogue: dialogue, Err: err}
	if err != nil {
		logging.UIError("Error fetching dialogue for %q: %v", task.input, err)
		result.Dialogue = ErrorDialogue
	}

	c.update(func(s *State) bool {
		s.Loading = false
		s.Dialogue = result.Dialogue
		return true
	})
	task.finish(result)
}

// generate calls the generator, turning a panic into an error so a broken
// generator cannot leave Loading stuck.
func (c *Controller) generate(ctx context.Context, input string) (dialogue string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return c.generator.Generate(ctx, input)
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
