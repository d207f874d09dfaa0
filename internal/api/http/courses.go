package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/scormlab/scormplay/internal/audit"
	"github.com/scormlab/scormplay/internal/course"
	"github.com/scormlab/scormplay/internal/scorm/manifest"
	"github.com/scormlab/scormplay/internal/scorm/pkgindex"
	"github.com/scormlab/scormplay/internal/storage"
)

// POST /courses (multipart: file=package.zip)
// Runs the full load pipeline; a failed load aborts with a single
// human-readable description and retains no partial state.
func UploadCourseHandler(store course.Store, bs storage.BlobStore, reg *course.Registry, log *audit.Log, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
			return
		}

		id := uuid.NewString()
		rt, err := course.Load(id, hdr.Filename, data)
		if err != nil {
			log.TryAppend(r.Context(), audit.Event{
				Type: audit.TypeLoadFailed,
				Key:  id,
				Data: map[string]string{"origin": hdr.Filename, "error": err.Error()},
			})
			http.Error(w, loadErrorMessage(err), loadErrorStatus(err))
			return
		}

		blobKey := "courses/" + id + "/package.zip"
		if _, err := bs.Put(blobKey, bytes.NewReader(data)); err != nil {
			http.Error(w, "store package: "+err.Error(), http.StatusInternalServerError)
			return
		}

		c := course.Course{
			ID:         id,
			Title:      rt.Manifest.Title,
			Version:    rt.Manifest.Version,
			LaunchPath: rt.Manifest.LaunchPath,
			OrgID:      rt.Manifest.OrganizationID,
			OriginName: hdr.Filename,
			BlobKey:    blobKey,
			SizeBytes:  int64(len(data)),
		}
		if err := store.PutCourse(r.Context(), c); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		reg.PutRuntime(rt)
		log.TryAppend(r.Context(), audit.Event{
			Type: audit.TypeCourseLoaded,
			Key:  id,
			Data: map[string]any{
				"title":      c.Title,
				"version":    c.Version,
				"launch":     c.LaunchPath,
				"entries":    rt.Pkg.Len(),
				"rewritten":  rt.Launch.Rewritten,
				"unresolved": len(rt.Launch.Unresolved),
			},
		})

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(c)
	}
}

// GET /courses
func ListCoursesHandler(store course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		out, err := store.ListCourses(r.Context(), course.ListOpts{
			Q:      r.URL.Query().Get("q"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if out == nil {
			out = []course.Course{}
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /courses/{courseID}
func GetCourseHandler(store course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.GetCourse(r.Context(), chi.URLParam(r, "courseID"))
		if errors.Is(err, course.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

// DELETE /courses/{courseID} — releases the runtime (and its sessions)
// before removing the catalog row and stored package.
func DeleteCourseHandler(store course.Store, bs storage.BlobStore, reg *course.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "courseID")
		c, err := store.GetCourse(r.Context(), id)
		if errors.Is(err, course.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		reg.CloseCourse(id)
		if err := store.DeleteCourse(r.Context(), id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := bs.Delete(c.BlobKey); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func loadErrorStatus(err error) int {
	switch {
	case errors.Is(err, pkgindex.ErrFormat),
		errors.Is(err, manifest.ErrMissing),
		errors.Is(err, manifest.ErrMalformed),
		errors.Is(err, manifest.ErrNoLaunchResource),
		errors.Is(err, manifest.ErrLaunchNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func loadErrorMessage(err error) string {
	switch {
	case errors.Is(err, pkgindex.ErrFormat):
		return "upload is not a valid course package: " + err.Error()
	case errors.Is(err, manifest.ErrMissing):
		return "package has no imsmanifest.xml"
	case errors.Is(err, manifest.ErrMalformed):
		return "package manifest is not well-formed: " + err.Error()
	case errors.Is(err, manifest.ErrNoLaunchResource):
		return "package manifest has no resolvable launch resource: " + err.Error()
	case errors.Is(err, manifest.ErrLaunchNotFound):
		return "launch file declared by the manifest is missing: " + err.Error()
	default:
		return err.Error()
	}
}
