package rte

// API2004 is the SCORM 2004 "API_1484_11" adapter, same shape as API12 with
// the newer call vocabulary.
type API2004 struct {
	s *Session
}

func NewAPI2004(s *Session) *API2004 { return &API2004{s: s} }

func (a *API2004) Initialize(string) string {
	return boolStr(a.s.Initialize())
}

func (a *API2004) Terminate(string) string {
	return boolStr(a.s.Terminate())
}

func (a *API2004) GetValue(element string) string {
	return a.s.GetValue(element)
}

func (a *API2004) SetValue(element, value string) string {
	return boolStr(a.s.SetValue(element, value))
}

func (a *API2004) Commit(string) string {
	return boolStr(a.s.Commit())
}

func (a *API2004) GetLastError() string {
	return a.s.LastError()
}

func (a *API2004) GetErrorString(code string) string {
	return a.s.ErrorString(code)
}

func (a *API2004) GetDiagnostic(code string) string {
	return a.s.Diagnostic(code)
}

// Dispatch routes a call by its exact SCORM 2004 name.
func (a *API2004) Dispatch(method string, args []string) (string, bool) {
	arg := argPicker(args)
	switch method {
	case "Initialize":
		return a.Initialize(arg(0)), true
	case "Terminate":
		return a.Terminate(arg(0)), true
	case "GetValue":
		return a.GetValue(arg(0)), true
	case "SetValue":
		return a.SetValue(arg(0), arg(1)), true
	case "Commit":
		return a.Commit(arg(0)), true
	case "GetLastError":
		return a.GetLastError(), true
	case "GetErrorString":
		return a.GetErrorString(arg(0)), true
	case "GetDiagnostic":
		return a.GetDiagnostic(arg(0)), true
	}
	return "", false
}

// Caller dispatches a runtime call by its exact standard name.
type Caller interface {
	Dispatch(method string, args []string) (string, bool)
}

// AdapterFor returns the call-name adapter matching the session's version.
func AdapterFor(s *Session) Caller {
	if s.Version() == V2004 {
		return NewAPI2004(s)
	}
	return NewAPI12(s)
}
