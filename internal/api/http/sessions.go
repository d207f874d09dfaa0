package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scormlab/scormplay/internal/audit"
	"github.com/scormlab/scormplay/internal/course"
	"github.com/scormlab/scormplay/internal/scorm/rte"
	"github.com/scormlab/scormplay/internal/storage"
)

// POST /courses/{courseID}/sessions — a fresh session in the course's API
// version. Restart is DELETE + POST; session state never survives either.
func CreateSessionHandler(store course.Store, bs storage.BlobStore, reg *course.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "courseID")
		if _, err := ensureRuntime(r.Context(), store, bs, reg, id); err != nil {
			if errors.Is(err, course.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, loadErrorMessage(err), loadErrorStatus(err))
			return
		}
		sid, s, err := reg.OpenSession(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"session_id": sid,
			"version":    string(s.Version()),
		})
	}
}

// GET /sessions/{sessionID} — live snapshot for the shell's status/score
// readout.
func GetSessionHandler(reg *course.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _, ok := reg.Session(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

// DELETE /sessions/{sessionID} — discards the session, recording its final
// snapshot in the audit log before the data model is gone.
func CloseSessionHandler(reg *course.Registry, log *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := chi.URLParam(r, "sessionID")
		snap, ok := reg.CloseSession(sid)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		log.TryAppend(r.Context(), audit.Event{
			Type: audit.TypeSessionClosed,
			Key:  sid,
			Data: snap,
		})
		_ = json.NewEncoder(w).Encode(snap)
	}
}

type rteCallRequest struct {
	Method string   `json:"method"`
	Args   []string `json:"args"`
}

type rteCallResponse struct {
	Result    string `json:"result"`
	ErrorCode string `json:"error_code"`
}

// POST /sessions/{sessionID}/call — dispatches one runtime call by its
// exact standard name. Protocol violations are not HTTP errors: the
// response carries the SCORM failure result and error code, which is the
// contract by which misbehaving content is told it did something wrong.
func RTECallHandler(reg *course.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _, ok := reg.Session(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var req rteCallRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		result, known := rte.AdapterFor(s).Dispatch(req.Method, req.Args)
		if !known {
			http.Error(w, "unknown method for this API version: "+req.Method, http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(rteCallResponse{
			Result:    result,
			ErrorCode: s.LastError(),
		})
	}
}
