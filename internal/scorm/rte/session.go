package rte

import (
	"fmt"
	"sync"
	"time"
)

// Version selects which SCORM runtime contract a Session speaks: key
// namespace, error-code vocabulary, and duration format.
type Version string

const (
	V12   Version = "1.2"
	V2004 Version = "2004"
)

type state int

const (
	stateUninitialized state = iota
	stateActive
	stateTerminated
)

func (s state) String() string {
	switch s {
	case stateActive:
		return "active"
	case stateTerminated:
		return "terminated"
	default:
		return "uninitialized"
	}
}

// Session is one run's worth of emulated host-communication state: the
// lifecycle flags, the dotted-key data model, and the last error code. Both
// API versions share this single state machine; the version tag controls
// key names, codes, and formats. Data persists only for the Session's
// lifetime.
type Session struct {
	mu        sync.Mutex
	version   Version
	codes     codeSet
	st        state
	lastError string
	data      map[string]string
	startedAt time.Time

	now func() time.Time
}

func NewSession(v Version) *Session {
	if v != V2004 {
		v = V12
	}
	return &Session{
		version:   v,
		codes:     codesFor(v),
		lastError: codeNoError,
		data:      seedDataModel(v),
		now:       time.Now,
	}
}

func (s *Session) Version() Version { return s.version }

// Initialize moves Uninitialized -> Active. A second call while Active
// fails with the version's "already initialized" code and changes nothing.
func (s *Session) Initialize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.st {
	case stateActive:
		return s.fail(s.codes.alreadyInitialized)
	case stateTerminated:
		return s.fail(s.codes.initializeAfterTerminate)
	}
	s.st = stateActive
	s.startedAt = s.now()
	return s.ok()
}

// Terminate moves Active -> Terminated, recording the elapsed session time
// into the data model in the version's duration format before the
// transition.
func (s *Session) Terminate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.st {
	case stateUninitialized:
		return s.fail(s.codes.terminateBeforeInit)
	case stateTerminated:
		return s.fail(s.codes.terminateAfterTerminate)
	}
	elapsed := s.now().Sub(s.startedAt)
	if s.version == V2004 {
		s.data["cmi.session_time"] = FormatDuration2004(elapsed)
	} else {
		s.data["cmi.core.session_time"] = FormatDuration12(elapsed)
	}
	s.st = stateTerminated
	return s.ok()
}

// GetValue returns the stored value for a dotted element name, or "" with
// the appropriate error code when the session is not Active or the key was
// never set.
func (s *Session) GetValue(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.st {
	case stateUninitialized:
		s.fail(s.codes.getBeforeInit)
		return ""
	case stateTerminated:
		s.fail(s.codes.getAfterTerminate)
		return ""
	}
	v, ok := s.data[key]
	if !ok {
		s.ok()
		return ""
	}
	s.ok()
	return v
}

// SetValue stores any dotted key verbatim; unknown keys are still stored
// and retrievable. No schema validation.
func (s *Session) SetValue(key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.st {
	case stateUninitialized:
		return s.fail(s.codes.setBeforeInit)
	case stateTerminated:
		return s.fail(s.codes.setAfterTerminate)
	}
	if key == "" {
		return s.fail(s.codes.invalidArgument)
	}
	s.data[key] = value
	return s.ok()
}

// Commit is a no-op that succeeds only while Active. Nothing is persisted
// anywhere; the data model lives and dies with the Session.
func (s *Session) Commit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.st {
	case stateUninitialized:
		return s.fail(s.codes.commitBeforeInit)
	case stateTerminated:
		return s.fail(s.codes.commitAfterTerminate)
	}
	return s.ok()
}

// LastError returns the most recent error code; "0" means no error.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// ErrorString maps a code to the version's fixed string table; unknown
// codes map to "".
func (s *Session) ErrorString(code string) string {
	return errorStrings(s.version)[code]
}

// Diagnostic returns the same fixed text as ErrorString; the emulator keeps
// no richer diagnostic history. An empty code means the last error.
func (s *Session) Diagnostic(code string) string {
	if code == "" {
		code = s.LastError()
	}
	return errorStrings(s.version)[code]
}

// ok and fail commit the error-code change before control returns to the
// caller, so a reentrant call in the same tick observes the final state.
func (s *Session) ok() bool {
	s.lastError = codeNoError
	return true
}

func (s *Session) fail(code string) bool {
	s.lastError = code
	return false
}

// Snapshot is the UI-facing view of a session: lifecycle state plus the
// well-known status/score keys for the session's version.
type Snapshot struct {
	Version       Version   `json:"version"`
	State         string    `json:"state"`
	LastError     string    `json:"last_error"`
	Status        string    `json:"status"`
	SuccessStatus string    `json:"success_status,omitempty"`
	ScoreRaw      string    `json:"score_raw,omitempty"`
	ScoreMin      string    `json:"score_min,omitempty"`
	ScoreMax      string    `json:"score_max,omitempty"`
	ScoreScaled   string    `json:"score_scaled,omitempty"`
	SessionTime   string    `json:"session_time,omitempty"`
	StartedAt     time.Time `json:"started_at,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Version:   s.version,
		State:     s.st.String(),
		LastError: s.lastError,
		StartedAt: s.startedAt,
	}
	if s.version == V2004 {
		snap.Status = s.data["cmi.completion_status"]
		snap.SuccessStatus = s.data["cmi.success_status"]
		snap.ScoreRaw = s.data["cmi.score.raw"]
		snap.ScoreMin = s.data["cmi.score.min"]
		snap.ScoreMax = s.data["cmi.score.max"]
		snap.ScoreScaled = s.data["cmi.score.scaled"]
		snap.SessionTime = s.data["cmi.session_time"]
	} else {
		snap.Status = s.data["cmi.core.lesson_status"]
		snap.ScoreRaw = s.data["cmi.core.score.raw"]
		snap.ScoreMin = s.data["cmi.core.score.min"]
		snap.ScoreMax = s.data["cmi.core.score.max"]
		snap.SessionTime = s.data["cmi.core.session_time"]
	}
	return snap
}

// FormatDuration12 renders an elapsed duration as the 1.2 CMITimespan form
// HH:MM:SS.
func FormatDuration12(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	sec := int(d/time.Second) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// FormatDuration2004 renders an elapsed duration as an ISO 8601 style
// PTnHnMnS timeinterval.
func FormatDuration2004(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	sec := int(d/time.Second) % 60
	out := "PT"
	if h > 0 {
		out += fmt.Sprintf("%dH", h)
	}
	if m > 0 {
		out += fmt.Sprintf("%dM", m)
	}
	out += fmt.Sprintf("%dS", sec)
	return out
}

func seedDataModel(v Version) map[string]string {
	if v == V2004 {
		return map[string]string{
			"cmi.completion_status": "unknown",
			"cmi.success_status":    "unknown",
			"cmi.entry":             "ab-initio",
			"cmi.exit":              "",
			"cmi.credit":            "credit",
			"cmi.mode":              "normal",
			"cmi.learner_id":        "learner-001",
			"cmi.learner_name":      "Learner, Anonymous",
			"cmi.location":          "",
			"cmi.suspend_data":      "",
			"cmi.total_time":        "PT0S",
			"cmi.session_time":      "",
			"cmi.score.raw":         "",
			"cmi.score.min":         "",
			"cmi.score.max":         "",
			"cmi.score.scaled":      "",
		}
	}
	return map[string]string{
		"cmi.core.lesson_status":   "not attempted",
		"cmi.core.entry":           "ab-initio",
		"cmi.core.exit":            "",
		"cmi.core.credit":          "credit",
		"cmi.core.lesson_mode":     "normal",
		"cmi.core.student_id":      "learner-001",
		"cmi.core.student_name":    "Learner, Anonymous",
		"cmi.core.lesson_location": "",
		"cmi.suspend_data":         "",
		"cmi.launch_data":          "",
		"cmi.core.total_time":      "00:00:00",
		"cmi.core.session_time":    "",
		"cmi.core.score.raw":       "",
		"cmi.core.score.min":       "",
		"cmi.core.score.max":       "",
	}
}
