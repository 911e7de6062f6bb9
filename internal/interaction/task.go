package interaction

import "context"

// Result is the settled outcome of a submission.
type Result struct {
	Input    string
	Dialogue string // the dialogue, or ErrorDialogue on failure
	Err      error
}

// Failed reports whether the submission ended in an error.
func (r Result) Failed() bool { return r.Err != nil }

// Task is a handle on one in-flight submission.
type Task struct {
	input  string
	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

func newTask(input string, cancel context.CancelFunc) *Task {
	return &Task{
		input:  input,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (t *Task) finish(r Result) {
	t.result = r
	close(t.done)
}

// Input returns the text that was submitted.
func (t *Task) Input() string { return t.input }

// Done is closed once the submission has settled and the controller state
// reflects the outcome.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the submission settles and returns its result.
func (t *Task) Wait() Result {
	<-t.done
	return t.result
}

// Cancel aborts the request. The submission still settles, as a failure.
func (t *Task) Cancel() { t.cancel() }
