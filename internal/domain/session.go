package domain

import (
	"context"
	"fmt"
	"time"
)

// SessionState is the screen a study session is currently on.
type SessionState string

const (
	StateWelcome     SessionState = "welcome"
	StateDashboard   SessionState = "dashboard"
	StateUpload      SessionState = "upload"
	StateSummarizing SessionState = "summarizing"
	StateSummary     SessionState = "summary"
	StateChat        SessionState = "chat"
)

var sessionTransitions = map[SessionState][]SessionState{
	StateWelcome:     {StateDashboard},
	StateDashboard:   {StateUpload, StateSummarizing, StateSummary},
	StateUpload:      {StateDashboard, StateSummarizing, StateSummary},
	StateSummarizing: {StateSummary, StateUpload, StateChat},
	StateSummary:     {StateDashboard, StateUpload, StateSummarizing, StateChat},
	StateChat:        {StateDashboard, StateUpload, StateSummarizing, StateSummary},
}

// Navigable reports whether a client may move to the state directly.
// The other states are entered only through the workflow operations.
func (s SessionState) Navigable() bool {
	switch s {
	case StateDashboard, StateUpload, StateSummary:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the workflow allows moving from one state to another.
func CanTransition(from, to SessionState) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StudySession is the transient state behind one browser tab.
type StudySession struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"user_id,omitempty"`
	State              SessionState  `json:"state"`
	Level              SummaryLevel  `json:"summary_level,omitempty"`
	Document           *Document     `json:"document,omitempty"`
	Summary            string        `json:"summary,omitempty"`
	Messages           []ChatMessage `json:"messages"`
	SuggestedQuestions []string      `json:"suggested_questions"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Transition moves the session to the next state.
func (s *StudySession) Transition(to SessionState) error {
	if s.State == to {
		return nil
	}
	if !CanTransition(s.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, to)
	}
	s.State = to
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Title is the uploaded file name, or empty before any upload.
func (s *StudySession) Title() string {
	if s.Document == nil {
		return ""
	}
	return s.Document.Title
}

// SessionView is the API representation of a session.
type SessionView struct {
	ID                 string          `json:"id"`
	State              SessionState    `json:"state"`
	Title              string          `json:"title,omitempty"`
	Level              SummaryLevel    `json:"summary_level,omitempty"`
	PageCount          int             `json:"page_count,omitempty"`
	Summary            string          `json:"summary,omitempty"`
	Outline            *SummaryOutline `json:"outline,omitempty"`
	Messages           []ChatMessage   `json:"messages"`
	SuggestedQuestions []string        `json:"suggested_questions"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// SessionRepository keeps study sessions for a bounded time.
type SessionRepository interface {
	Save(ctx context.Context, session *StudySession) error
	Get(ctx context.Context, id string) (*StudySession, error)
	Delete(ctx context.Context, id string) error
}
