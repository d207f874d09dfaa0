package course

import (
	"log"
	"net/url"
	"strings"

	"github.com/scormlab/scormplay/internal/scorm/manifest"
	"github.com/scormlab/scormplay/internal/scorm/pkgindex"
	"github.com/scormlab/scormplay/internal/scorm/rewrite"
	"github.com/scormlab/scormplay/internal/scorm/vres"
)

// Runtime is the in-memory state of one loaded course: the indexed package,
// its manifest, the resource table minted for this load, and the rewritten
// launch document. A Runtime is owned by the Registry and discarded as a
// unit; nothing in it is mutated after Load returns.
type Runtime struct {
	CourseID string
	Pkg      *pkgindex.Package
	Manifest manifest.Manifest
	Table    *vres.Table
	Launch   rewrite.Result
	BasePath string
}

// AssetURL is the handle form embedded in rewritten content for a given
// course and canonical entry path.
func AssetURL(courseID, entryPath string) string {
	norm := strings.ReplaceAll(entryPath, "\\", "/")
	parts := strings.Split(norm, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/courses/" + url.PathEscape(courseID) + "/assets/" + strings.Join(parts, "/")
}

// Load runs the full pipeline over raw package bytes: index, parse
// manifest, build the resource table, rewrite the launch document, inject
// the bootstrap. Unresolved references are logged and preserved; any other
// failure aborts the load.
func Load(courseID, originName string, data []byte) (*Runtime, error) {
	pkg, err := pkgindex.Index(originName, data)
	if err != nil {
		return nil, err
	}
	mf, err := manifest.Parse(pkg)
	if err != nil {
		return nil, err
	}
	launch, _ := manifest.LaunchEntry(pkg, mf.LaunchPath)

	table := vres.Build(pkg, func(entryPath string) string {
		return AssetURL(courseID, entryPath)
	})
	basePath := rewrite.BasePath(mf.LaunchPath)
	result := rewrite.Rewrite(launch.Text(), table, basePath, rewrite.Bootstrap)
	for _, ref := range result.Unresolved {
		log.Printf("course %s: unresolved reference %q left untouched", courseID, ref)
	}

	return &Runtime{
		CourseID: courseID,
		Pkg:      pkg,
		Manifest: mf,
		Table:    table,
		Launch:   result,
		BasePath: basePath,
	}, nil
}
