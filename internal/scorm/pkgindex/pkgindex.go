package pkgindex

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrFormat means the uploaded bytes are not a readable ZIP package.
var ErrFormat = errors.New("not a valid course package")

// Entry is one file (or directory marker) inside an indexed package.
type Entry struct {
	Path  string
	IsDir bool
	data  []byte
}

func (e *Entry) Bytes() []byte { return e.data }

// Text decodes the entry as UTF-8 text.
func (e *Entry) Text() string { return string(e.data) }

func (e *Entry) Size() int64 { return int64(len(e.data)) }

// Package is the in-memory index over one uploaded course archive: every
// entry's bytes, keyed by archive path, in archive order.
type Package struct {
	Origin  string
	order   []string
	entries map[string]*Entry
}

// Index reads a ZIP archive fully into memory. All entries are extracted
// up front; nothing downstream needs one entry before the rest.
func Index(origin string, b []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	p := &Package{
		Origin:  origin,
		entries: make(map[string]*Entry, len(zr.File)),
	}
	for _, f := range zr.File {
		name := f.Name
		if f.FileInfo().IsDir() || strings.HasSuffix(name, "/") {
			p.put(&Entry{Path: strings.TrimSuffix(name, "/"), IsDir: true})
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrFormat, name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrFormat, name, err)
		}
		p.put(&Entry{Path: name, data: data})
	}
	return p, nil
}

func (p *Package) put(e *Entry) {
	if _, dup := p.entries[e.Path]; !dup {
		p.order = append(p.order, e.Path)
	}
	p.entries[e.Path] = e
}

// Entry returns the entry at the exact archive path.
func (p *Package) Entry(path string) (*Entry, bool) {
	e, ok := p.entries[path]
	return e, ok
}

// Entries returns all entries in archive order.
func (p *Package) Entries() []*Entry {
	out := make([]*Entry, 0, len(p.order))
	for _, path := range p.order {
		out = append(out, p.entries[path])
	}
	return out
}

func (p *Package) Len() int { return len(p.order) }
