package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/scormlab/scormplay/internal/course"
	"github.com/scormlab/scormplay/internal/scorm/extract"
	"github.com/scormlab/scormplay/internal/scorm/vres"
	"github.com/scormlab/scormplay/internal/storage"
)

// The extraction endpoints are a stateless transform over the same indexed
// package the player uses; they share the runtime, not the session.

func withRuntime(store course.Store, bs storage.BlobStore, reg *course.Registry,
	fn func(w http.ResponseWriter, r *http.Request, rt *course.Runtime)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt, err := ensureRuntime(r.Context(), store, bs, reg, chi.URLParam(r, "courseID"))
		if errors.Is(err, course.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, loadErrorMessage(err), loadErrorStatus(err))
			return
		}
		fn(w, r, rt)
	}
}

// GET /courses/{courseID}/extract/transcripts
func TranscriptsHandler(store course.Store, bs storage.BlobStore, reg *course.Registry) http.HandlerFunc {
	return withRuntime(store, bs, reg, func(w http.ResponseWriter, r *http.Request, rt *course.Runtime) {
		out := extract.Transcripts(rt.Pkg)
		if out == nil {
			out = []extract.Transcript{}
		}
		_ = json.NewEncoder(w).Encode(out)
	})
}

// GET /courses/{courseID}/extract/assessments
func AssessmentsHandler(store course.Store, bs storage.BlobStore, reg *course.Registry) http.HandlerFunc {
	return withRuntime(store, bs, reg, func(w http.ResponseWriter, r *http.Request, rt *course.Runtime) {
		out := extract.Assessments(rt.Pkg)
		if out == nil {
			out = []extract.Assessment{}
		}
		_ = json.NewEncoder(w).Encode(out)
	})
}

// GET /courses/{courseID}/extract/videos
func VideosHandler(store course.Store, bs storage.BlobStore, reg *course.Registry) http.HandlerFunc {
	return withRuntime(store, bs, reg, func(w http.ResponseWriter, r *http.Request, rt *course.Runtime) {
		out := extract.Videos(rt.Pkg)
		if out == nil {
			out = []extract.Video{}
		}
		_ = json.NewEncoder(w).Encode(out)
	})
}

// GET /courses/{courseID}/extract/videos/* — downloads one video entry with
// its inferred MIME type.
func VideoDownloadHandler(store course.Store, bs storage.BlobStore, reg *course.Registry) http.HandlerFunc {
	return withRuntime(store, bs, reg, func(w http.ResponseWriter, r *http.Request, rt *course.Runtime) {
		key := chi.URLParam(r, "*")
		if unesc, err := url.PathUnescape(key); err == nil {
			key = unesc
		}
		e, ok := rt.Pkg.Entry(key)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", vres.TypeByExtension(e.Path))
		w.Header().Set("Content-Disposition", `attachment; filename="`+baseOf(e.Path)+`"`)
		_, _ = w.Write(e.Bytes())
	})
}

func baseOf(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}
