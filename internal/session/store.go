// Package session holds the client-side state of one analysis session.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/yildizm/TruthWeaver/internal/analysis"
)

// Status is the request status of the session.
type Status int

const (
	// StatusIdle - a file may be selected, nothing submitted yet.
	StatusIdle Status = iota
	// StatusInFlight - exactly one request is outstanding.
	StatusInFlight
	// StatusSucceeded - transcript and analysis are populated.
	StatusSucceeded
	// StatusFailed - the error message is populated.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusInFlight:
		return "IN_FLIGHT"
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// CanSubmit reports whether a new submission may start from this status.
func (s Status) CanSubmit() bool {
	return s != StatusInFlight
}

// Errors for refused transitions.
var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrNoFileSelected    = errors.New("no audio file selected")
	ErrStaleSubmission   = errors.New("submission is no longer current")
)

// Ticket identifies one submission between BeginSubmission and its completion.
type Ticket struct {
	ID   string
	File *AudioFile
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	File         *AudioFile
	Status       Status
	Transcript   string
	Analysis     *analysis.Result
	ErrorMessage string
	RequestID    string
}

// HasError reports whether an error message is set.
func (s Snapshot) HasError() bool {
	return s.ErrorMessage != ""
}

// Observer is notified with the new snapshot after every transition.
type Observer func(Snapshot)

// Store is the single source of truth for a session. Safe for concurrent use.
//
// Transitions:
//
//	IDLE|SUCCEEDED|FAILED ── BeginSubmission ──→ IN_FLIGHT
//	IN_FLIGHT ── CompleteSuccess ──→ SUCCEEDED
//	IN_FLIGHT ── CompleteFailure ──→ FAILED
//	any ── SelectFile ──→ IDLE (results and error cleared)
//
// A SelectFile during IN_FLIGHT retires the outstanding ticket; its
// completion is then refused with ErrStaleSubmission.
type Store struct {
	mu        sync.RWMutex
	state     Snapshot
	observers []observerEntry
	nextID    int
}

type observerEntry struct {
	id int
	fn Observer
}

// NewStore creates an empty store in IDLE state.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Selected returns the currently selected file, or nil.
func (s *Store) Selected() *AudioFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.File
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// SelectFile replaces the selection and resets the session to IDLE.
func (s *Store) SelectFile(file *AudioFile) {
	s.apply(func(st *Snapshot) error {
		*st = Snapshot{File: file, Status: StatusIdle}
		return nil
	})
}

// BeginSubmission moves the session to IN_FLIGHT and returns its ticket.
func (s *Store) BeginSubmission() (Ticket, error) {
	return s.begin(nil)
}

// BeginSubmissionFor selects file and moves to IN_FLIGHT in one transition.
// Like BeginSubmission it is refused while another submission is in flight.
func (s *Store) BeginSubmissionFor(file *AudioFile) (Ticket, error) {
	if file == nil {
		return Ticket{}, ErrNoFileSelected
	}
	return s.begin(file)
}

func (s *Store) begin(file *AudioFile) (Ticket, error) {
	var ticket Ticket
	err := s.apply(func(st *Snapshot) error {
		if st.Status == StatusInFlight {
			return fmt.Errorf("%w: submission already in flight", ErrInvalidTransition)
		}
		if file == nil {
			file = st.File
		}
		if file == nil {
			return ErrNoFileSelected
		}
		ticket = Ticket{ID: uuid.NewString(), File: file}
		*st = Snapshot{
			File:      file,
			Status:    StatusInFlight,
			RequestID: ticket.ID,
		}
		return nil
	})
	return ticket, err
}

// CompleteSuccess records the results of the in-flight submission.
func (s *Store) CompleteSuccess(ticket Ticket, transcript string, result *analysis.Result) error {
	return s.apply(func(st *Snapshot) error {
		if err := checkCurrent(st, ticket); err != nil {
			return err
		}
		st.Status = StatusSucceeded
		st.Transcript = transcript
		st.Analysis = result
		st.ErrorMessage = ""
		return nil
	})
}

// CompleteFailure records the failure of the in-flight submission.
func (s *Store) CompleteFailure(ticket Ticket, message string) error {
	return s.apply(func(st *Snapshot) error {
		if err := checkCurrent(st, ticket); err != nil {
			return err
		}
		st.Status = StatusFailed
		st.Transcript = ""
		st.Analysis = nil
		st.ErrorMessage = message
		return nil
	})
}

// RejectSubmission records a failure detected before any request was made.
func (s *Store) RejectSubmission(message string) error {
	return s.apply(func(st *Snapshot) error {
		if st.Status == StatusInFlight {
			return fmt.Errorf("%w: submission already in flight", ErrInvalidTransition)
		}
		*st = Snapshot{
			File:         st.File,
			Status:       StatusFailed,
			ErrorMessage: message,
		}
		return nil
	})
}

func checkCurrent(st *Snapshot, ticket Ticket) error {
	if st.Status != StatusInFlight {
		if ticket.ID != "" && ticket.ID != st.RequestID {
			return ErrStaleSubmission
		}
		return fmt.Errorf("%w: %s is not in flight", ErrInvalidTransition, st.Status)
	}
	if ticket.ID != st.RequestID {
		return ErrStaleSubmission
	}
	return nil
}

// apply runs one transition under the lock and notifies observers after
// releasing it. A transition that returns an error leaves state unchanged.
func (s *Store) apply(transition func(*Snapshot) error) error {
	s.mu.Lock()
	next := s.state
	if err := transition(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o.fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
	return nil
}
