// Package opc implements the minimal Open Packaging Conventions container
// needed by a streaming OOXML writer: named parts with content types,
// relationships between parts, and a single finalization point.
package opc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/adnsv/srw/xml"
	"github.com/google/uuid"
)

// Well-known relationship and content types.
const (
	RelTypeOfficeDocument     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelTypeWorksheet          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
	RelTypeSharedStrings      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings"
	RelTypeStyles             = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RelTypeHyperlink          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelTypeCoreProperties     = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RelTypeExtendedProperties = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"

	ContentTypeRelationships = "application/vnd.openxmlformats-package.relationships+xml"
)

var (
	ErrClosed      = errors.New("opc: package is closed")
	ErrPartClosed  = errors.New("opc: part is closed")
	ErrInvalidName = errors.New("opc: invalid part name")
)

// Options configures a Package.
type Options struct {
	Logger *slog.Logger

	// TempDir holds spooled parts; empty means os.TempDir.
	TempDir string
}

// Relationship is a typed reference from a source part (or the package
// itself) to a target part or an external resource.
type Relationship struct {
	ID       string
	Type     string
	Target   string // absolute part name or external URI
	External bool
}

// Package collects parts into a Storage.
//
// Only one part streams into the storage at a time. A part created while
// another is streaming is spooled into a temporary file and copied over once
// the storage is free, so independent parts may be written in any order
// and from different goroutines.
type Package struct {
	mu      sync.Mutex
	storage Storage
	log     *slog.Logger
	tempDir string

	parts        map[string]*Part
	defaults     map[string]string // extension -> content type
	contentTypes map[string]string // part name -> content type
	rels         map[string][]Relationship
	relSources   []string

	streaming *Part
	pending   []*Part
	closed    bool
}

// New returns a Package writing into s.
func New(s Storage, opts *Options) *Package {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	p := &Package{
		storage:      s,
		log:          o.Logger,
		tempDir:      o.TempDir,
		parts:        map[string]*Part{},
		defaults:     map[string]string{},
		contentTypes: map[string]string{},
		rels:         map[string][]Relationship{},
	}
	p.defaults["xml"] = "application/xml"
	p.defaults["rels"] = ContentTypeRelationships
	return p
}

// CreatePart creates a part named name (an absolute path such as
// "/xl/workbook.xml") with the given content type. The caller must Close
// the part.
func (p *Package) CreatePart(name, contentType string) (*Part, error) {
	if !strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if _, exists := p.parts[name]; exists {
		return nil, fmt.Errorf("%w: duplicate part %q", ErrInvalidName, name)
	}

	pt := &Part{pkg: p, name: name}
	if p.streaming == nil {
		sink, err := p.storage.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
		pt.sink = sink
		p.streaming = pt
	} else {
		f, err := os.CreateTemp(p.tempDir, "opc-*.part")
		if err != nil {
			return nil, fmt.Errorf("spool %s: %w", name, err)
		}
		pt.spool = f
		pt.sink = f
		p.log.Debug("spooling part", "name", name, "streaming", p.streaming.name)
	}
	pt.w = bufio.NewWriterSize(pt.sink, 64*1024)

	p.parts[name] = pt
	if contentType != "" {
		p.contentTypes[name] = contentType
	}
	return pt, nil
}

// Relate declares a relationship from source to target. An empty source
// denotes the package itself. An empty id is replaced by an auto-assigned
// one. The id actually used is returned.
func (p *Package) Relate(source, target, relType, id string) (string, error) {
	return p.addRel(source, Relationship{ID: id, Type: relType, Target: target})
}

// RelateExternal declares a relationship from source to an external URI.
func (p *Package) RelateExternal(source, uri, relType string) (string, error) {
	return p.addRel(source, Relationship{Type: relType, Target: uri, External: true})
}

func (p *Package) addRel(source string, r Relationship) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return "", ErrClosed
	}
	if source != "" && !strings.HasPrefix(source, "/") {
		return "", fmt.Errorf("%w: source %q", ErrInvalidName, source)
	}
	if !r.External && !strings.HasPrefix(r.Target, "/") {
		return "", fmt.Errorf("%w: target %q", ErrInvalidName, r.Target)
	}

	existing := p.rels[source]
	if r.ID == "" {
		for r.ID == "" || hasRelID(existing, r.ID) {
			r.ID = autoRelID()
		}
	} else if hasRelID(existing, r.ID) {
		return "", fmt.Errorf("opc: duplicate relationship id %q in %q", r.ID, source)
	}

	if _, ok := p.rels[source]; !ok {
		p.relSources = append(p.relSources, source)
	}
	p.rels[source] = append(existing, r)
	return r.ID, nil
}

func hasRelID(rels []Relationship, id string) bool {
	for _, r := range rels {
		if r.ID == id {
			return true
		}
	}
	return false
}

func autoRelID() string {
	u := uuid.New()
	return fmt.Sprintf("R%X", u[:8])
}

// Close writes the relationship parts and the content-type manifest, then
// closes the storage. Every part must be closed before.
func (p *Package) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	for name, pt := range p.parts {
		if !pt.closed {
			p.mu.Unlock()
			return fmt.Errorf("opc: part %s is still open", name)
		}
	}
	sources := append([]string(nil), p.relSources...)
	p.mu.Unlock()

	for _, src := range sources {
		if err := p.writeRels(src); err != nil {
			return err
		}
	}
	if err := p.writeContentTypes(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if err := p.drain(); err != nil {
		return err
	}
	p.log.Debug("package closed", "parts", len(p.parts))
	return p.storage.Close()
}

// release is called by Part.Close.
func (p *Package) release(pt *Part) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pt == p.streaming {
		p.streaming = nil
		if err := pt.sink.Close(); err != nil {
			return fmt.Errorf("close %s: %w", pt.name, err)
		}
	} else {
		p.pending = append(p.pending, pt)
	}
	if p.streaming == nil {
		return p.drain()
	}
	return nil
}

// drain copies spooled parts into the storage. p.mu must be held.
func (p *Package) drain() error {
	for len(p.pending) > 0 {
		pt := p.pending[0]
		p.pending = p.pending[1:]
		if err := p.copySpool(pt); err != nil {
			return err
		}
	}
	return nil
}

func (p *Package) copySpool(pt *Part) error {
	f := pt.spool
	defer os.Remove(f.Name())
	defer f.Close()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("spool %s: %w", pt.name, err)
	}
	sink, err := p.storage.Create(pt.name)
	if err != nil {
		return fmt.Errorf("create %s: %w", pt.name, err)
	}
	n, err := io.Copy(sink, f)
	if err != nil {
		sink.Close()
		return fmt.Errorf("copy %s: %w", pt.name, err)
	}
	p.log.Debug("spooled part flushed", "name", pt.name, "bytes", n)
	return sink.Close()
}

func relsPartName(source string) string {
	if source == "" {
		return "/_rels/.rels"
	}
	dir, base := path.Split(source)
	return dir + "_rels/" + base + ".rels"
}

// relativeTarget expresses target relative to the folder of source.
// Targets outside that folder stay absolute.
func relativeTarget(source, target string) string {
	if source == "" {
		return strings.TrimPrefix(target, "/")
	}
	dir := path.Dir(source)
	if strings.HasPrefix(target, dir+"/") {
		return target[len(dir)+1:]
	}
	return target
}

func (p *Package) writeRels(source string) error {
	p.mu.Lock()
	rels := append([]Relationship(nil), p.rels[source]...)
	p.mu.Unlock()

	pt, err := p.CreatePart(relsPartName(source), "")
	if err != nil {
		return err
	}
	x := xml.NewWriter(pt, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("Relationships")
	x.Attr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")
	for _, r := range rels {
		x.OTag("+Relationship").Attr("Id", r.ID).Attr("Type", r.Type)
		if r.External {
			x.Attr("Target", r.Target).Attr("TargetMode", "External")
		} else {
			x.Attr("Target", relativeTarget(source, r.Target))
		}
		x.CTag()
	}
	x.CTag()

	return pt.Close()
}

func (p *Package) writeContentTypes() error {
	p.mu.Lock()
	defaults := make(map[string]string, len(p.defaults))
	for k, v := range p.defaults {
		defaults[k] = v
	}
	overrides := make(map[string]string, len(p.contentTypes))
	for k, v := range p.contentTypes {
		overrides[k] = v
	}
	p.mu.Unlock()

	pt, err := p.CreatePart("/[Content_Types].xml", "")
	if err != nil {
		return err
	}
	x := xml.NewWriter(pt, xml.WriterConfig{Indent: xml.Indent2Spaces})

	x.XmlStandaloneDecl()
	x.OTag("Types")
	x.Attr("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")
	enumerate(defaults, func(ext, ctype string) error {
		x.OTag("+Default").Attr("Extension", ext).Attr("ContentType", ctype).CTag()
		return nil
	})
	enumerate(overrides, func(abspath, ctype string) error {
		x.OTag("+Override").Attr("PartName", abspath).Attr("ContentType", ctype).CTag()
		return nil
	})

	x.CTag()

	return pt.Close()
}

// Part is a writable package part. Writes are buffered; the first write
// error is sticky and reported again by Close.
type Part struct {
	pkg    *Package
	name   string
	w      *bufio.Writer
	sink   io.WriteCloser
	spool  *os.File
	err    error
	closed bool
}

// Name returns the absolute part name.
func (pt *Part) Name() string { return pt.name }

// Spooled reports whether the part is buffered in a temporary file rather
// than streamed directly into the storage.
func (pt *Part) Spooled() bool { return pt.spool != nil }

func (pt *Part) Write(b []byte) (int, error) {
	if pt.err != nil {
		return 0, pt.err
	}
	if pt.closed {
		return 0, ErrPartClosed
	}
	n, err := pt.w.Write(b)
	if err != nil {
		pt.err = fmt.Errorf("write %s: %w", pt.name, err)
	}
	return n, pt.err
}

// Err returns the first error encountered while writing the part.
func (pt *Part) Err() error { return pt.err }

// Close flushes the part and hands it back to the package.
func (pt *Part) Close() error {
	if pt.closed {
		return pt.err
	}
	if pt.err == nil {
		if err := pt.w.Flush(); err != nil {
			pt.err = fmt.Errorf("write %s: %w", pt.name, err)
		}
	}
	pt.pkg.mu.Lock()
	pt.closed = true
	pt.pkg.mu.Unlock()

	if err := pt.pkg.release(pt); err != nil && pt.err == nil {
		pt.err = err
	}
	return pt.err
}
