package http

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scormlab/scormplay/internal/course"
)

// PlayerHandler serves the shell page hosting a course: it opens a session,
// installs the version-appropriate API object on the shell window (where
// the injected bootstrap's parent-chain walk finds it), renders the
// rewritten launch document in a sandboxed iframe, and shows live
// status/score read from the session.
func PlayerHandler(store course.Store) http.HandlerFunc {
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
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = playerPage.Execute(w, c)
	}
}

var playerPage = template.Must(template.New("player").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; font-family: sans-serif; display: flex; flex-direction: column; height: 100vh; }
  header { padding: 8px 12px; background: #1e2a38; color: #fff; display: flex; gap: 12px; align-items: center; }
  header .title { font-weight: bold; flex: 1; }
  header button { padding: 4px 10px; }
  #frame { border: 0; flex: 1; width: 100%; }
  #status { font-size: 13px; opacity: .85; }
</style>
</head>
<body>
<header>
  <span class="title">{{.Title}}</span>
  <span id="status">loading…</span>
  <button id="restart">Restart</button>
  <button id="fullscreen">Fullscreen</button>
</header>
<iframe id="frame" sandbox="allow-scripts allow-same-origin allow-forms"></iframe>
<script>
(function () {
  var courseID = {{.ID}};
  var version = {{.Version}};
  var sessionID = null;

  function callRTE(method, args) {
    var xhr = new XMLHttpRequest();
    // The SCORM API contract is synchronous; the adapter blocks per call.
    xhr.open("POST", "/sessions/" + sessionID + "/call", false);
    xhr.setRequestHeader("Content-Type", "application/json");
    xhr.send(JSON.stringify({ method: method, args: args || [] }));
    if (xhr.status !== 200) return "";
    return JSON.parse(xhr.responseText).result;
  }

  function adapter(methods) {
    var api = {};
    methods.forEach(function (m) {
      api[m] = function () {
        return callRTE(m, Array.prototype.slice.call(arguments).map(String));
      };
    });
    return api;
  }

  function installAPI() {
    if (version === "2004") {
      window.API_1484_11 = adapter(["Initialize", "Terminate", "GetValue",
        "SetValue", "Commit", "GetLastError", "GetErrorString", "GetDiagnostic"]);
    } else {
      window.API = adapter(["LMSInitialize", "LMSFinish", "LMSGetValue",
        "LMSSetValue", "LMSCommit", "LMSGetLastError", "LMSGetErrorString",
        "LMSGetDiagnostic"]);
    }
  }

  function openSession(done) {
    var xhr = new XMLHttpRequest();
    xhr.open("POST", "/courses/" + courseID + "/sessions", false);
    xhr.send();
    if (xhr.status !== 201) { done(null); return; }
    done(JSON.parse(xhr.responseText).session_id);
  }

  function closeSession() {
    if (!sessionID) return;
    var xhr = new XMLHttpRequest();
    xhr.open("DELETE", "/sessions/" + sessionID, false);
    xhr.send();
    sessionID = null;
  }

  function boot() {
    openSession(function (sid) {
      if (!sid) { document.getElementById("status").textContent = "failed to start session"; return; }
      sessionID = sid;
      installAPI();
      document.getElementById("frame").src = "/courses/" + courseID + "/launch";
    });
  }

  function pollStatus() {
    if (!sessionID) return;
    fetch("/sessions/" + sessionID).then(function (r) { return r.json(); }).then(function (s) {
      var text = s.state + " · " + (s.status || "unknown");
      if (s.score_raw) text += " · score " + s.score_raw;
      else if (s.score_scaled) text += " · score " + s.score_scaled;
      document.getElementById("status").textContent = text;
    }).catch(function () {});
  }
  setInterval(pollStatus, 2000);

  document.getElementById("restart").onclick = function () {
    document.getElementById("frame").src = "about:blank";
    closeSession();
    boot();
  };
  document.getElementById("fullscreen").onclick = function () {
    var f = document.getElementById("frame");
    if (f.requestFullscreen) f.requestFullscreen();
  };
  window.addEventListener("beforeunload", closeSession);

  boot();
})();
</script>
</body>
</html>`))
