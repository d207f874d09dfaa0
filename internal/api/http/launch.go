package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/scormlab/scormplay/internal/course"
	"github.com/scormlab/scormplay/internal/storage"
)

// ensureRuntime returns the live runtime for a course, rebuilding it from
// the stored package bytes after a process restart. The rewritten document
// is deterministic for the same package, so a rebuild yields the same
// content the original load produced.
func ensureRuntime(ctx context.Context, store course.Store, bs storage.BlobStore, reg *course.Registry, courseID string) (*course.Runtime, error) {
	if rt, ok := reg.Runtime(courseID); ok {
		return rt, nil
	}
	c, err := store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	rc, err := bs.Get(c.BlobKey)
	if err != nil {
		return nil, fmt.Errorf("stored package unavailable: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	rt, err := course.Load(courseID, c.OriginName, data)
	if err != nil {
		return nil, err
	}
	reg.PutRuntime(rt)
	return rt, nil
}

// GET /courses/{courseID}/launch — the rewritten launch document.
func LaunchHandler(store course.Store, bs storage.BlobStore, reg *course.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "courseID")
		rt, err := ensureRuntime(r.Context(), store, bs, reg, id)
		if errors.Is(err, course.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, loadErrorMessage(err), loadErrorStatus(err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, rt.Launch.HTML)
	}
}

// GET /courses/{courseID}/assets/* — serves package entry bytes for the
// URLs minted into the rewritten document. A released runtime stops
// resolving: requests against it 404.
func AssetHandler(reg *course.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "courseID")
		rt, ok := reg.Runtime(id)
		if !ok {
			http.Error(w, "course not loaded", http.StatusNotFound)
			return
		}
		key := chi.URLParam(r, "*")
		if unesc, err := url.PathUnescape(key); err == nil {
			key = unesc
		}
		h, ok := rt.Table.Lookup(key)
		if !ok {
			if h2 := rt.Table.Resolve("", key); h2 != nil {
				h = h2
			} else {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
		}
		e, ok := rt.Pkg.Entry(h.Path)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", h.MIME)
		_, _ = w.Write(e.Bytes())
	}
}
