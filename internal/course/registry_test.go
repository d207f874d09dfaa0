package course

import (
	"testing"

	"github.com/scormlab/scormplay/internal/scorm/rte"
)

func loadedRuntime(t *testing.T, courseID string) *Runtime {
	t.Helper()
	rt, err := Load(courseID, "course.zip", validPackage(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return rt
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()
	rt := loadedRuntime(t, "c1")
	reg.PutRuntime(rt)

	got, ok := reg.Runtime("c1")
	if !ok || got != rt {
		t.Fatal("runtime not registered")
	}

	sid, s, err := reg.OpenSession("c1")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if s.Version() != rte.V12 {
		t.Errorf("session version = %q", s.Version())
	}
	if got, _, ok := reg.Session(sid); !ok || got != s {
		t.Fatal("session not retrievable")
	}

	reg.CloseCourse("c1")
	if _, ok := reg.Runtime("c1"); ok {
		t.Error("runtime survived CloseCourse")
	}
	if _, _, ok := reg.Session(sid); ok {
		t.Error("session survived CloseCourse")
	}
}

func TestPutRuntimeReplacesAndReleases(t *testing.T) {
	reg := NewRegistry()
	reg.PutRuntime(loadedRuntime(t, "c1"))
	sid, _, err := reg.OpenSession("c1")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}

	// loading a new package under the same id releases the old runtime's
	// sessions
	replacement := loadedRuntime(t, "c1")
	reg.PutRuntime(replacement)

	if _, _, ok := reg.Session(sid); ok {
		t.Error("session from superseded runtime still resolvable")
	}
	if got, ok := reg.Runtime("c1"); !ok || got != replacement {
		t.Error("replacement runtime not installed")
	}
}

func TestOpenSessionRequiresRuntime(t *testing.T) {
	reg := NewRegistry()
	if _, _, err := reg.OpenSession("ghost"); err == nil {
		t.Fatal("OpenSession without runtime succeeded")
	}
}

func TestCloseSessionReturnsFinalSnapshot(t *testing.T) {
	reg := NewRegistry()
	reg.PutRuntime(loadedRuntime(t, "c1"))
	sid, s, _ := reg.OpenSession("c1")
	s.Initialize()
	s.SetValue("cmi.core.lesson_status", "passed")
	s.Terminate()

	snap, ok := reg.CloseSession(sid)
	if !ok {
		t.Fatal("CloseSession missed open session")
	}
	if snap.Status != "passed" || snap.State != "terminated" {
		t.Errorf("snapshot = %+v", snap)
	}
	if _, ok := reg.CloseSession(sid); ok {
		t.Error("double close succeeded")
	}
}

func TestCloseAll(t *testing.T) {
	reg := NewRegistry()
	reg.PutRuntime(loadedRuntime(t, "c1"))
	reg.PutRuntime(loadedRuntime(t, "c2"))
	sid, _, _ := reg.OpenSession("c2")
	reg.CloseAll()
	if _, ok := reg.Runtime("c1"); ok {
		t.Error("c1 survived CloseAll")
	}
	if _, _, ok := reg.Session(sid); ok {
		t.Error("session survived CloseAll")
	}
}
