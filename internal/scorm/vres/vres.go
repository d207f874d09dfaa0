package vres

import (
	"mime"
	"path"
	"strings"

	"github.com/scormlab/scormplay/internal/scorm/pkgindex"
)

// Handle is an addressable reference to one package entry: the canonical
// archive path, the URL rewritten content should use, and the inferred MIME
// type.
type Handle struct {
	Path string
	URL  string
	MIME string
}

// Table maps every plausible string form of an entry's path to its handle.
// A table is built once per load and discarded with the load; it is never
// mutated after Build returns.
type Table struct {
	byVariant map[string]*Handle
	handles   []*Handle
}

// MintURL converts a canonical entry path into the URL embedded in
// rewritten content.
type MintURL func(entryPath string) string

// Build registers, for every non-directory entry: the path as-is, with
// backslashes normalized, with and without a leading "/", with a leading
// "./", and the bare filename. Bare filenames are first-writer-wins so a
// shallow entry cannot be masked by a deeper one registered later.
func Build(pkg *pkgindex.Package, mint MintURL) *Table {
	t := &Table{byVariant: make(map[string]*Handle)}
	for _, e := range pkg.Entries() {
		if e.IsDir {
			continue
		}
		norm := strings.ReplaceAll(e.Path, "\\", "/")
		h := &Handle{
			Path: e.Path,
			URL:  mint(e.Path),
			MIME: TypeByExtension(norm),
		}
		t.handles = append(t.handles, h)
		t.claim(e.Path, h, true)
		t.claim(norm, h, true)
		t.claim("/"+norm, h, true)
		t.claim("./"+norm, h, true)
		t.claim(path.Base(norm), h, false)
	}
	return t
}

func (t *Table) claim(variant string, h *Handle, overwrite bool) {
	if variant == "" {
		return
	}
	if _, taken := t.byVariant[variant]; taken && !overwrite {
		return
	}
	t.byVariant[variant] = h
}

// Handles returns every registered handle, one per entry.
func (t *Table) Handles() []*Handle { return t.handles }

// Lookup returns the handle for an exact variant string.
func (t *Table) Lookup(variant string) (*Handle, bool) {
	h, ok := t.byVariant[variant]
	return h, ok
}

// Resolve maps a reference found in content to a handle, or nil when the
// reference must be left untouched: absolute/special references are never
// rewritten, and an unmatched local reference is a soft degradation, not an
// error. Candidates are tried in a fixed order; the first hit wins.
func (t *Table) Resolve(basePath, ref string) *Handle {
	if ShouldSkip(ref) {
		return nil
	}
	stripped := strings.TrimPrefix(ref, "./")
	candidates := []string{
		ref,
		basePath + ref,
		stripped,
		basePath + stripped,
		strings.TrimPrefix(ref, "/"),
	}
	for _, c := range candidates {
		if h, ok := t.byVariant[c]; ok {
			return h
		}
	}
	return nil
}

var skipPrefixes = []string{
	"http://", "https://", "data:", "blob:", "//",
	"#", "javascript:", "mailto:",
}

// ShouldSkip reports whether a reference is absolute or special and must be
// preserved byte-identical by the rewriter.
func ShouldSkip(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	for _, p := range skipPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// TypeByExtension infers a MIME type from a path's extension, with fallbacks
// for course media the platform mime table may not know.
func TypeByExtension(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if mt, ok := extraTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

var extraTypes = map[string]string{
	".htm":  "text/html; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".js":   "text/javascript",
	".css":  "text/css",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".ogv":  "video/ogg",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".svg":  "image/svg+xml",
	".woff": "font/woff",
	".xml":  "application/xml",
	".json": "application/json",
	".swf":  "application/x-shockwave-flash",
}
