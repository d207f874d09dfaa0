package course

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/scormlab/scormplay/internal/scorm/rte"
)

var ErrNotLoaded = errors.New("course runtime not loaded")

// Registry owns every live Runtime and every open Session. Runtimes hold
// the whole package in memory, so releasing them promptly when a course is
// replaced or deleted is a correctness requirement, not housekeeping:
// asset URLs minted for a closed runtime must stop resolving.
type Registry struct {
	mu       sync.Mutex
	runtimes map[string]*Runtime       // courseID -> runtime
	sessions map[string]*sessionHandle // sessionID -> session
}

type sessionHandle struct {
	CourseID string
	Session  *rte.Session
}

func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[string]*Runtime),
		sessions: make(map[string]*sessionHandle),
	}
}

// PutRuntime installs a freshly loaded runtime, releasing any previous
// runtime (and its sessions) registered under the same course ID. A load
// superseded before installation never reaches the registry, so its state
// is released by ordinary garbage collection.
func (r *Registry) PutRuntime(rt *Runtime) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropCourseLocked(rt.CourseID)
	r.runtimes[rt.CourseID] = rt
}

// Runtime returns the live runtime for a course, if loaded.
func (r *Registry) Runtime(courseID string) (*Runtime, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.runtimes[courseID]
	return rt, ok
}

// CloseCourse releases a course's runtime and every session opened on it.
func (r *Registry) CloseCourse(courseID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropCourseLocked(courseID)
}

func (r *Registry) dropCourseLocked(courseID string) {
	delete(r.runtimes, courseID)
	for id, h := range r.sessions {
		if h.CourseID == courseID {
			delete(r.sessions, id)
		}
	}
}

// OpenSession creates a fresh session for a loaded course, in the course's
// API version. Each open is a new Session; restart is close-then-open.
func (r *Registry) OpenSession(courseID string) (string, *rte.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.runtimes[courseID]
	if !ok {
		return "", nil, ErrNotLoaded
	}
	v := rte.V12
	if rt.Manifest.Version == "2004" {
		v = rte.V2004
	}
	id := uuid.NewString()
	s := rte.NewSession(v)
	r.sessions[id] = &sessionHandle{CourseID: courseID, Session: s}
	return id, s, nil
}

// Session returns an open session and the course it belongs to.
func (r *Registry) Session(sessionID string) (*rte.Session, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.sessions[sessionID]
	if !ok {
		return nil, "", false
	}
	return h.Session, h.CourseID, true
}

// CloseSession discards a session's state. Returns the final snapshot so
// callers can record it before the data model is gone.
func (r *Registry) CloseSession(sessionID string) (rte.Snapshot, bool) {
	r.mu.Lock()
	h, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()
	if !ok {
		return rte.Snapshot{}, false
	}
	return h.Session.Snapshot(), true
}

// CloseAll releases every runtime and session; shell teardown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runtimes = make(map[string]*Runtime)
	r.sessions = make(map[string]*sessionHandle)
}
