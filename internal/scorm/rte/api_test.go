package rte

import "testing"

func TestAPI12CallSurface(t *testing.T) {
	api := NewAPI12(NewSession(V12))

	if got := api.LMSInitialize(""); got != "true" {
		t.Fatalf("LMSInitialize = %q", got)
	}
	if got := api.LMSSetValue("cmi.core.score.raw", "85"); got != "true" {
		t.Fatalf("LMSSetValue = %q", got)
	}
	if got := api.LMSGetValue("cmi.core.score.raw"); got != "85" {
		t.Errorf("LMSGetValue = %q, want 85", got)
	}
	if got := api.LMSCommit(""); got != "true" {
		t.Errorf("LMSCommit = %q", got)
	}
	if got := api.LMSFinish(""); got != "true" {
		t.Errorf("LMSFinish = %q", got)
	}
	if got := api.LMSGetValue("cmi.core.score.raw"); got != "" {
		t.Errorf("LMSGetValue after finish = %q, want empty", got)
	}
	if got := api.LMSGetLastError(); got != "301" {
		t.Errorf("LMSGetLastError = %q, want 301", got)
	}
	if got := api.LMSGetErrorString("301"); got != "Not initialized" {
		t.Errorf("LMSGetErrorString = %q", got)
	}
	if got := api.LMSGetDiagnostic("301"); got != "Not initialized" {
		t.Errorf("LMSGetDiagnostic = %q", got)
	}
}

func TestAPI2004CallSurface(t *testing.T) {
	api := NewAPI2004(NewSession(V2004))

	if got := api.GetValue("cmi.completion_status"); got != "" {
		t.Errorf("GetValue before Initialize = %q", got)
	}
	if got := api.GetLastError(); got != "122" {
		t.Errorf("GetLastError = %q, want 122", got)
	}
	if got := api.Initialize(""); got != "true" {
		t.Fatalf("Initialize = %q", got)
	}
	if got := api.SetValue("cmi.completion_status", "completed"); got != "true" {
		t.Fatalf("SetValue = %q", got)
	}
	if got := api.Terminate(""); got != "true" {
		t.Fatalf("Terminate = %q", got)
	}
	if got := api.SetValue("cmi.exit", "normal"); got != "false" {
		t.Errorf("SetValue after Terminate = %q", got)
	}
	if got := api.GetLastError(); got != "133" {
		t.Errorf("GetLastError = %q, want 133", got)
	}
}

func TestDispatchByName(t *testing.T) {
	s := NewSession(V12)
	a := AdapterFor(s)

	if _, ok := a.Dispatch("Initialize", nil); ok {
		t.Error("1.2 adapter accepted a 2004 call name")
	}
	res, ok := a.Dispatch("LMSInitialize", []string{""})
	if !ok || res != "true" {
		t.Fatalf("Dispatch LMSInitialize = %q, %v", res, ok)
	}
	if res, _ := a.Dispatch("LMSSetValue", []string{"cmi.core.score.raw", "85"}); res != "true" {
		t.Fatalf("Dispatch LMSSetValue = %q", res)
	}
	if res, _ := a.Dispatch("LMSGetValue", []string{"cmi.core.score.raw"}); res != "85" {
		t.Errorf("Dispatch LMSGetValue = %q", res)
	}

	s2 := NewSession(V2004)
	a2 := AdapterFor(s2)
	if _, ok := a2.Dispatch("LMSInitialize", nil); ok {
		t.Error("2004 adapter accepted a 1.2 call name")
	}
	if res, ok := a2.Dispatch("Initialize", nil); !ok || res != "true" {
		t.Fatalf("Dispatch Initialize = %q, %v", res, ok)
	}
}

// A rapid Initialize-then-Get in the same tick must observe committed
// state: the error code is final before control returns.
func TestReentrantCallsSameTick(t *testing.T) {
	api := NewAPI12(NewSession(V12))
	if api.LMSInitialize("") != "true" {
		t.Fatal("init failed")
	}
	if api.LMSGetLastError() != "0" {
		t.Fatal("error code not committed before return")
	}
	api.LMSSetValue("cmi.core.lesson_status", "completed")
	if got := api.LMSGetValue("cmi.core.lesson_status"); got != "completed" {
		t.Fatalf("immediate readback = %q", got)
	}
}
