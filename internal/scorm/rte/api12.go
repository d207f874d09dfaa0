package rte

// API12 is the SCORM 1.2 "API" adapter: the exact call names and
// string-in/string-out signatures content expects, delegating to the shared
// Session state machine. Boolean results are the literal strings "true" and
// "false" per the standard.
type API12 struct {
	s *Session
}

func NewAPI12(s *Session) *API12 { return &API12{s: s} }

func (a *API12) LMSInitialize(string) string {
	return boolStr(a.s.Initialize())
}

func (a *API12) LMSFinish(string) string {
	return boolStr(a.s.Terminate())
}

func (a *API12) LMSGetValue(element string) string {
	return a.s.GetValue(element)
}

func (a *API12) LMSSetValue(element, value string) string {
	return boolStr(a.s.SetValue(element, value))
}

func (a *API12) LMSCommit(string) string {
	return boolStr(a.s.Commit())
}

func (a *API12) LMSGetLastError() string {
	return a.s.LastError()
}

func (a *API12) LMSGetErrorString(code string) string {
	return a.s.ErrorString(code)
}

func (a *API12) LMSGetDiagnostic(code string) string {
	return a.s.Diagnostic(code)
}

// Dispatch routes a call by its exact SCORM 1.2 name. The second return is
// false for a name outside the 1.2 surface.
func (a *API12) Dispatch(method string, args []string) (string, bool) {
	arg := argPicker(args)
	switch method {
	case "LMSInitialize":
		return a.LMSInitialize(arg(0)), true
	case "LMSFinish":
		return a.LMSFinish(arg(0)), true
	case "LMSGetValue":
		return a.LMSGetValue(arg(0)), true
	case "LMSSetValue":
		return a.LMSSetValue(arg(0), arg(1)), true
	case "LMSCommit":
		return a.LMSCommit(arg(0)), true
	case "LMSGetLastError":
		return a.LMSGetLastError(), true
	case "LMSGetErrorString":
		return a.LMSGetErrorString(arg(0)), true
	case "LMSGetDiagnostic":
		return a.LMSGetDiagnostic(arg(0)), true
	}
	return "", false
}

func boolStr(ok bool) string {
	if ok {
		return "true"
	}
	return "false"
}

func argPicker(args []string) func(int) string {
	return func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
}
