package manifest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/scormlab/scormplay/internal/scorm/pkgindex"
)

const (
	manifestName = "imsmanifest.xml"
	defaultTitle = "SCORM Course"
)

var (
	ErrMissing          = errors.New("imsmanifest.xml not found in package")
	ErrMalformed        = errors.New("imsmanifest.xml is not well-formed XML")
	ErrNoLaunchResource = errors.New("manifest has no resolvable launch resource")
	ErrLaunchNotFound   = errors.New("launch file missing from package")
)

// Manifest is the parsed control document of a course package.
type Manifest struct {
	Version        string // "1.2" or "2004"
	LaunchPath     string
	Title          string
	OrganizationID string
}

type imsManifest struct {
	XMLName       xml.Name `xml:"manifest"`
	SchemaVersion string   `xml:"schemaversion"`
	Metadata      struct {
		SchemaVersion string `xml:"schemaversion"`
	} `xml:"metadata"`
	Organizations imsOrganizations `xml:"organizations"`
	Resources     []imsResource    `xml:"resources>resource"`
}

type imsOrganizations struct {
	Default       string            `xml:"default,attr"`
	Organizations []imsOrganization `xml:"organization"`
}

type imsOrganization struct {
	Identifier string    `xml:"identifier,attr"`
	Title      string    `xml:"title"`
	Items      []imsItem `xml:"item"`
}

type imsItem struct {
	IdentifierRef string    `xml:"identifierref,attr"`
	Title         string    `xml:"title"`
	Items         []imsItem `xml:"item"`
}

type imsResource struct {
	Identifier string `xml:"identifier,attr"`
	Href       string `xml:"href,attr"`
}

// Parse locates and decodes imsmanifest.xml and resolves the default
// organization -> launch item -> resource chain to a launch path, verifying
// the path exists in the package.
func Parse(pkg *pkgindex.Package) (Manifest, error) {
	e, ok := pkg.Entry(manifestName)
	if !ok {
		return Manifest{}, ErrMissing
	}

	var mf imsManifest
	if err := xml.Unmarshal(e.Bytes(), &mf); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	m := Manifest{
		Version: detectVersion(mf),
		Title:   titleOf(mf),
	}

	org, ok := selectOrganization(mf.Organizations)
	if !ok {
		return Manifest{}, fmt.Errorf("%w: no organization", ErrNoLaunchResource)
	}
	m.OrganizationID = org.Identifier

	ref, ok := firstItemRef(org.Items)
	if !ok {
		return Manifest{}, fmt.Errorf("%w: no item with identifierref", ErrNoLaunchResource)
	}

	href, ok := resourceHref(mf.Resources, ref)
	if !ok {
		return Manifest{}, fmt.Errorf("%w: resource %q", ErrNoLaunchResource, ref)
	}
	m.LaunchPath = href

	if _, ok := launchEntry(pkg, href); !ok {
		return Manifest{}, fmt.Errorf("%w: %q", ErrLaunchNotFound, href)
	}
	return m, nil
}

// LaunchEntry returns the package entry the manifest's launch path points at,
// tolerating a leading "./" in the href.
func LaunchEntry(pkg *pkgindex.Package, launchPath string) (*pkgindex.Entry, bool) {
	return launchEntry(pkg, launchPath)
}

func launchEntry(pkg *pkgindex.Package, href string) (*pkgindex.Entry, bool) {
	if e, ok := pkg.Entry(href); ok {
		return e, true
	}
	return pkg.Entry(strings.TrimPrefix(href, "./"))
}

func detectVersion(mf imsManifest) string {
	sv := strings.TrimSpace(mf.SchemaVersion)
	if sv == "" {
		sv = strings.TrimSpace(mf.Metadata.SchemaVersion)
	}
	if strings.Contains(sv, "2004") {
		return "2004"
	}
	return "1.2"
}

func titleOf(mf imsManifest) string {
	for _, org := range mf.Organizations.Organizations {
		if t := strings.TrimSpace(org.Title); t != "" {
			return t
		}
	}
	return defaultTitle
}

func selectOrganization(orgs imsOrganizations) (imsOrganization, bool) {
	if orgs.Default != "" {
		for _, o := range orgs.Organizations {
			if o.Identifier == orgs.Default {
				return o, true
			}
		}
	}
	if len(orgs.Organizations) > 0 {
		return orgs.Organizations[0], true
	}
	return imsOrganization{}, false
}

// firstItemRef walks the item tree depth-first and returns the first
// identifierref encountered.
func firstItemRef(items []imsItem) (string, bool) {
	for _, it := range items {
		if it.IdentifierRef != "" {
			return it.IdentifierRef, true
		}
		if ref, ok := firstItemRef(it.Items); ok {
			return ref, true
		}
	}
	return "", false
}

func resourceHref(resources []imsResource, identifier string) (string, bool) {
	for _, r := range resources {
		if r.Identifier != identifier {
			continue
		}
		// An identified resource without an href is an invalid launch
		// chain; fabricating a default would mask a broken package.
		if r.Href == "" {
			return "", false
		}
		return r.Href, true
	}
	return "", false
}
