package rewrite

import (
	"regexp"
	"strings"

	"github.com/scormlab/scormplay/internal/scorm/vres"
)

// Result is the launch document after reference rewriting and bootstrap
// injection. Unresolved lists local references that matched no package
// entry; they are preserved verbatim in the output.
type Result struct {
	HTML       string
	Rewritten  int
	Unresolved []string
}

// Attribute references are matched per quote style since RE2 has no
// backreferences.
var attrPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(src|href|data|poster|background)(\s*=\s*")([^"]*)(")`),
	regexp.MustCompile(`(?i)\b(src|href|data|poster|background)(\s*=\s*')([^']*)(')`),
}

var cssURLPattern = regexp.MustCompile(`(?i)url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

var (
	headOpenPattern = regexp.MustCompile(`(?i)<head[^>]*>`)
	htmlOpenPattern = regexp.MustCompile(`(?i)<html[^>]*>`)
)

// Rewrite replaces every markup attribute and CSS url(...) reference that
// resolves against the table with its handle URL, then injects the bootstrap
// script. References that are absolute/special or unresolvable are left
// byte-identical.
func Rewrite(doc string, table *vres.Table, basePath, bootstrap string) Result {
	res := Result{}
	out := doc

	for _, re := range attrPatterns {
		out = re.ReplaceAllStringFunc(out, func(m string) string {
			parts := re.FindStringSubmatch(m)
			attr, eq, ref, quote := parts[1], parts[2], parts[3], parts[4]
			h := table.Resolve(basePath, ref)
			if h == nil {
				res.noteUnresolved(ref)
				return m
			}
			res.Rewritten++
			return attr + eq + h.URL + quote
		})
	}

	out = cssURLPattern.ReplaceAllStringFunc(out, func(m string) string {
		ref := cssURLPattern.FindStringSubmatch(m)[1]
		h := table.Resolve(basePath, ref)
		if h == nil {
			res.noteUnresolved(ref)
			return m
		}
		res.Rewritten++
		return "url(" + h.URL + ")"
	})

	res.HTML = inject(out, bootstrap)
	return res
}

func (r *Result) noteUnresolved(ref string) {
	if ref == "" || vres.ShouldSkip(ref) {
		return
	}
	for _, u := range r.Unresolved {
		if u == ref {
			return
		}
	}
	r.Unresolved = append(r.Unresolved, ref)
}

// inject places the bootstrap immediately inside <head> if present, else
// immediately inside <html>, else at the top of the document.
func inject(doc, bootstrap string) string {
	if bootstrap == "" {
		return doc
	}
	if loc := headOpenPattern.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + bootstrap + doc[loc[1]:]
	}
	if loc := htmlOpenPattern.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + bootstrap + doc[loc[1]:]
	}
	return bootstrap + doc
}

// BasePath returns the directory prefix of a launch path, with a trailing
// slash, for resolving references relative to the launch document.
func BasePath(launchPath string) string {
	p := strings.ReplaceAll(launchPath, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return ""
	}
	return p[:idx+1]
}

// Bootstrap is the script injected into the launch document. Inside the
// sandboxed frame it walks the parent-window chain (bounded, the chain can
// be self-referential at the top) looking for the SCORM API objects the
// content expects to discover ambiently, and publishes them on the frame's
// own window so plain `API`/`API_1484_11` lookups succeed.
const Bootstrap = `<script>
(function () {
  function findAPI(name) {
    var win = window, hops = 0;
    while (win && hops < 500) {
      try { if (win[name]) return win[name]; } catch (e) { return null; }
      if (win === win.parent) break;
      win = win.parent;
      hops++;
    }
    try {
      if (window.opener && window.opener[name]) return window.opener[name];
    } catch (e) {}
    return null;
  }
  var api = findAPI("API");
  if (api) window.API = api;
  var api2004 = findAPI("API_1484_11");
  if (api2004) window.API_1484_11 = api2004;
})();
</script>`
