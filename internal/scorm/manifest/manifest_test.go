package manifest

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/scormlab/scormplay/internal/scorm/pkgindex"
)

func pkgWith(t *testing.T, files map[string]string) *pkgindex.Package {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	p, err := pkgindex.Index("test.zip", buf.Bytes())
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	return p
}

const manifest2004 = `<?xml version="1.0"?>
<manifest identifier="m1">
  <metadata>
    <schemaversion>2004 3rd Edition</schemaversion>
  </metadata>
  <organizations default="orgA">
    <organization identifier="orgB">
      <title>Wrong Org</title>
      <item identifier="i9" identifierref="resB"/>
    </organization>
    <organization identifier="orgA">
      <title>Right Org</title>
      <item identifier="i1">
        <item identifier="i2" identifierref="resA"/>
      </item>
    </organization>
  </organizations>
  <resources>
    <resource identifier="resA" href="content/index.html"/>
    <resource identifier="resB" href="other.html"/>
  </resources>
</manifest>`

func TestParse2004SelectsDefaultOrganization(t *testing.T) {
	p := pkgWith(t, map[string]string{
		"imsmanifest.xml":    manifest2004,
		"content/index.html": "<html/>",
		"other.html":         "<html/>",
	})
	m, err := Parse(p)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Version != "2004" {
		t.Errorf("version = %q, want 2004", m.Version)
	}
	// default="orgA" must win over document order
	if m.OrganizationID != "orgA" {
		t.Errorf("organization = %q, want orgA", m.OrganizationID)
	}
	if m.LaunchPath != "content/index.html" {
		t.Errorf("launch = %q", m.LaunchPath)
	}
	if m.Title != "Wrong Org" {
		// title is the first organization>title descendant
		t.Errorf("title = %q", m.Title)
	}
}

func TestParseNoSchemaVersionDefaults12(t *testing.T) {
	p := pkgWith(t, map[string]string{
		"imsmanifest.xml": `<manifest>
  <organizations default="o1">
    <organization identifier="o1">
      <title>Basic Course</title>
      <item identifier="i1" identifierref="r1"/>
    </organization>
  </organizations>
  <resources><resource identifier="r1" href="index.html"/></resources>
</manifest>`,
		"index.html": "<html/>",
	})
	m, err := Parse(p)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Version != "1.2" {
		t.Errorf("version = %q, want 1.2", m.Version)
	}
	if m.Title != "Basic Course" {
		t.Errorf("title = %q", m.Title)
	}
}

func TestParseTopLevelSchemaVersion(t *testing.T) {
	p := pkgWith(t, map[string]string{
		"imsmanifest.xml": `<manifest>
  <schemaversion>CAM 1.3 SCORM 2004</schemaversion>
  <organizations>
    <organization identifier="o1">
      <item identifier="i1" identifierref="r1"/>
    </organization>
  </organizations>
  <resources><resource identifier="r1" href="go.html"/></resources>
</manifest>`,
		"go.html": "<html/>",
	})
	m, err := Parse(p)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Version != "2004" {
		t.Errorf("version = %q, want 2004", m.Version)
	}
	if m.Title != "SCORM Course" {
		t.Errorf("title fallback = %q", m.Title)
	}
}

func TestParseUnknownDefaultFallsBackToFirstOrg(t *testing.T) {
	p := pkgWith(t, map[string]string{
		"imsmanifest.xml": `<manifest>
  <organizations default="nope">
    <organization identifier="first">
      <item identifier="i1" identifierref="r1"/>
    </organization>
  </organizations>
  <resources><resource identifier="r1" href="a.html"/></resources>
</manifest>`,
		"a.html": "<html/>",
	})
	m, err := Parse(p)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.OrganizationID != "first" {
		t.Errorf("organization = %q, want first", m.OrganizationID)
	}
}

func TestParseErrors(t *testing.T) {
	t.Run("missing manifest", func(t *testing.T) {
		p := pkgWith(t, map[string]string{"index.html": "<html/>"})
		if _, err := Parse(p); !errors.Is(err, ErrMissing) {
			t.Fatalf("want ErrMissing, got %v", err)
		}
	})

	t.Run("malformed xml", func(t *testing.T) {
		p := pkgWith(t, map[string]string{"imsmanifest.xml": "<manifest><unclosed"})
		if _, err := Parse(p); !errors.Is(err, ErrMalformed) {
			t.Fatalf("want ErrMalformed, got %v", err)
		}
	})

	t.Run("no item with identifierref", func(t *testing.T) {
		p := pkgWith(t, map[string]string{
			"imsmanifest.xml": `<manifest><organizations><organization identifier="o"><item identifier="i"/></organization></organizations></manifest>`,
		})
		if _, err := Parse(p); !errors.Is(err, ErrNoLaunchResource) {
			t.Fatalf("want ErrNoLaunchResource, got %v", err)
		}
	})

	t.Run("resource without href fails loudly", func(t *testing.T) {
		p := pkgWith(t, map[string]string{
			"imsmanifest.xml": `<manifest>
  <organizations><organization identifier="o"><item identifier="i" identifierref="r"/></organization></organizations>
  <resources><resource identifier="r"/></resources>
</manifest>`,
			"index.html": "<html/>",
		})
		if _, err := Parse(p); !errors.Is(err, ErrNoLaunchResource) {
			t.Fatalf("want ErrNoLaunchResource, got %v", err)
		}
	})

	t.Run("launch file missing from package", func(t *testing.T) {
		p := pkgWith(t, map[string]string{
			"imsmanifest.xml": `<manifest>
  <organizations><organization identifier="o"><item identifier="i" identifierref="r"/></organization></organizations>
  <resources><resource identifier="r" href="gone.html"/></resources>
</manifest>`,
		})
		if _, err := Parse(p); !errors.Is(err, ErrLaunchNotFound) {
			t.Fatalf("want ErrLaunchNotFound, got %v", err)
		}
	})
}

func TestParseLaunchHrefWithDotSlash(t *testing.T) {
	p := pkgWith(t, map[string]string{
		"imsmanifest.xml": `<manifest>
  <organizations><organization identifier="o"><item identifier="i" identifierref="r"/></organization></organizations>
  <resources><resource identifier="r" href="./start.html"/></resources>
</manifest>`,
		"start.html": "<html/>",
	})
	m, err := Parse(p)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := LaunchEntry(p, m.LaunchPath); !ok {
		t.Fatal("launch entry not resolvable")
	}
}
