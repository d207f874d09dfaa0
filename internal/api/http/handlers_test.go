package http

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/scormlab/scormplay/internal/course"
	"github.com/scormlab/scormplay/internal/storage"
)

/* ---------------- In-memory fake satisfying course.Store ---------------- */

type fakeStore struct {
	courses map[string]course.Course
}

func newFakeStore() *fakeStore {
	return &fakeStore{courses: map[string]course.Course{}}
}

func (s *fakeStore) PutCourse(_ context.Context, c course.Course) error {
	s.courses[c.ID] = c
	return nil
}

func (s *fakeStore) GetCourse(_ context.Context, id string) (course.Course, error) {
	c, ok := s.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (s *fakeStore) ListCourses(_ context.Context, _ course.ListOpts) ([]course.Course, error) {
	out := make([]course.Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeStore) DeleteCourse(_ context.Context, id string) error {
	if _, ok := s.courses[id]; !ok {
		return course.ErrNotFound
	}
	delete(s.courses, id)
	return nil
}

var _ course.Store = (*fakeStore)(nil)

/* ---------------- helpers ---------------- */

func packageZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct{ name, body string }{
		{"imsmanifest.xml", `<manifest>
  <metadata><schemaversion>1.2</schemaversion></metadata>
  <organizations default="o1">
    <organization identifier="o1">
      <title>Handler Course</title>
      <item identifier="i1" identifierref="r1"/>
    </organization>
  </organizations>
  <resources><resource identifier="r1" href="index.html"/></resources>
</manifest>`},
		{"index.html", `<html><head></head><body><img src="img/logo.png"></body></html>`},
		{"img/logo.png", "png-bytes"},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		_, _ = w.Write([]byte(f.body))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

type testEnv struct {
	store *fakeStore
	reg   *course.Registry
	srv   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newFakeStore()
	reg := course.NewRegistry()
	bs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}

	r := chi.NewRouter()
	r.Post("/courses", UploadCourseHandler(store, bs, reg, nil, 64<<20))
	r.Get("/courses", ListCoursesHandler(store))
	r.Get("/courses/{courseID}", GetCourseHandler(store))
	r.Delete("/courses/{courseID}", DeleteCourseHandler(store, bs, reg))
	r.Get("/courses/{courseID}/launch", LaunchHandler(store, bs, reg))
	r.Get("/courses/{courseID}/assets/*", AssetHandler(reg))
	r.Post("/courses/{courseID}/sessions", CreateSessionHandler(store, bs, reg))
	r.Get("/sessions/{sessionID}", GetSessionHandler(reg))
	r.Delete("/sessions/{sessionID}", CloseSessionHandler(reg, nil))
	r.Post("/sessions/{sessionID}/call", RTECallHandler(reg))
	r.Get("/courses/{courseID}/extract/transcripts", TranscriptsHandler(store, bs, reg))
	r.Get("/courses/{courseID}/extract/videos", VideosHandler(store, bs, reg))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(reg.CloseAll)
	return &testEnv{store: store, reg: reg, srv: srv}
}

func (e *testEnv) upload(t *testing.T, data []byte) course.Course {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "course.zip")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()

	resp, err := http.Post(e.srv.URL+"/courses", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d", resp.StatusCode)
	}
	var c course.Course
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return c
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func rteCall(t *testing.T, srvURL, sid, method string, args ...string) rteCallResponse {
	t.Helper()
	body, _ := json.Marshal(rteCallRequest{Method: method, Args: args})
	resp, err := http.Post(srvURL+"/sessions/"+sid+"/call", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("call %s: %v", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("call %s status = %d", method, resp.StatusCode)
	}
	var out rteCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode call: %v", err)
	}
	return out
}

/* ---------------- tests ---------------- */

func TestUploadAndLaunch(t *testing.T) {
	env := newTestEnv(t)
	c := env.upload(t, packageZip(t))

	if c.Title != "Handler Course" || c.Version != "1.2" || c.LaunchPath != "index.html" {
		t.Fatalf("course = %+v", c)
	}

	resp, err := http.Get(env.srv.URL + "/courses/" + c.ID + "/launch")
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("launch status = %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read launch: %v", err)
	}
	html := string(raw)
	if !strings.Contains(html, "/courses/"+c.ID+"/assets/img/logo.png") {
		t.Error("asset reference not rewritten in served launch document")
	}
	if !strings.Contains(html, "findAPI") {
		t.Error("bootstrap missing from served launch document")
	}

	assetResp, err := http.Get(env.srv.URL + "/courses/" + c.ID + "/assets/img/logo.png")
	if err != nil {
		t.Fatalf("asset: %v", err)
	}
	defer assetResp.Body.Close()
	if assetResp.StatusCode != http.StatusOK {
		t.Errorf("asset status = %d", assetResp.StatusCode)
	}
	if ct := assetResp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("asset content-type = %q", ct)
	}
}

func TestUploadRejectsInvalidPackage(t *testing.T) {
	env := newTestEnv(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "junk.zip")
	_, _ = fw.Write([]byte("not a zip"))
	_ = mw.Close()

	resp, err := http.Post(env.srv.URL+"/courses", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSessionProtocolOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	c := env.upload(t, packageZip(t))

	resp, err := http.Post(env.srv.URL+"/courses/"+c.ID+"/sessions", "", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	var created struct {
		SessionID string `json:"session_id"`
		Version   string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if created.Version != "1.2" {
		t.Errorf("version = %q", created.Version)
	}
	sid := created.SessionID

	// protocol violation surfaces as a SCORM failure, not an HTTP error
	out := rteCall(t, env.srv.URL, sid, "LMSGetValue", "cmi.core.lesson_status")
	if out.Result != "" || out.ErrorCode != "301" {
		t.Errorf("pre-init get = %+v", out)
	}

	if out := rteCall(t, env.srv.URL, sid, "LMSInitialize", ""); out.Result != "true" {
		t.Fatalf("initialize = %+v", out)
	}
	if out := rteCall(t, env.srv.URL, sid, "LMSSetValue", "cmi.core.score.raw", "85"); out.Result != "true" {
		t.Fatalf("set = %+v", out)
	}
	if out := rteCall(t, env.srv.URL, sid, "LMSGetValue", "cmi.core.score.raw"); out.Result != "85" {
		t.Errorf("get = %+v", out)
	}

	var snap struct {
		State    string `json:"state"`
		ScoreRaw string `json:"score_raw"`
	}
	getJSON(t, env.srv.URL+"/sessions/"+sid, &snap)
	if snap.State != "active" || snap.ScoreRaw != "85" {
		t.Errorf("snapshot = %+v", snap)
	}

	// a 2004 call name is rejected on a 1.2 session
	body, _ := json.Marshal(rteCallRequest{Method: "Initialize"})
	badResp, err := http.Post(env.srv.URL+"/sessions/"+sid+"/call", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	badResp.Body.Close()
	if badResp.StatusCode != http.StatusBadRequest {
		t.Errorf("wrong-version call status = %d", badResp.StatusCode)
	}

	// close returns the final snapshot and frees the session
	req, _ := http.NewRequest(http.MethodDelete, env.srv.URL+"/sessions/"+sid, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d", delResp.StatusCode)
	}
	if r2 := getJSON(t, env.srv.URL+"/sessions/"+sid, nil); r2.StatusCode != http.StatusNotFound {
		t.Errorf("closed session still reachable: %d", r2.StatusCode)
	}
}

func TestDeleteCourseReleasesAssets(t *testing.T) {
	env := newTestEnv(t)
	c := env.upload(t, packageZip(t))

	req, _ := http.NewRequest(http.MethodDelete, env.srv.URL+"/courses/"+c.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	assetResp, err := http.Get(env.srv.URL + "/courses/" + c.ID + "/assets/img/logo.png")
	if err != nil {
		t.Fatalf("asset: %v", err)
	}
	assetResp.Body.Close()
	if assetResp.StatusCode != http.StatusNotFound {
		t.Errorf("asset served after course delete: %d", assetResp.StatusCode)
	}
}

func TestLaunchRebuildsFromBlobStore(t *testing.T) {
	env := newTestEnv(t)
	c := env.upload(t, packageZip(t))

	// simulate a process restart: runtime gone, catalog and blob remain
	env.reg.CloseCourse(c.ID)

	resp := getJSON(t, env.srv.URL+"/courses/"+c.ID+"/launch", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("launch after runtime release = %d", resp.StatusCode)
	}
	if _, ok := env.reg.Runtime(c.ID); !ok {
		t.Error("runtime not rebuilt from stored package")
	}
}

func TestExtractEndpoints(t *testing.T) {
	env := newTestEnv(t)
	c := env.upload(t, packageZip(t))

	// index.html carries no visible text and the package has no videos
	var transcripts []struct {
		FileName string `json:"fileName"`
	}
	getJSON(t, env.srv.URL+"/courses/"+c.ID+"/extract/transcripts", &transcripts)
	if len(transcripts) != 0 {
		t.Errorf("transcripts = %v, want none", transcripts)
	}

	var videos []struct {
		FileName string `json:"fileName"`
	}
	getJSON(t, env.srv.URL+"/courses/"+c.ID+"/extract/videos", &videos)
	if len(videos) != 0 {
		t.Errorf("videos = %v, want none", videos)
	}
}

func TestGetCourseNotFound(t *testing.T) {
	env := newTestEnv(t)
	resp := getJSON(t, env.srv.URL+"/courses/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
