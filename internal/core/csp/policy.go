package csp

import "strings"

// Directive names used by the default policy.
const (
	DefaultSrc     = "default-src"
	ScriptSrc      = "script-src"
	StyleSrc       = "style-src"
	ImgSrc         = "img-src"
	FontSrc        = "font-src"
	ConnectSrc     = "connect-src"
	ObjectSrc      = "object-src"
	BaseURI        = "base-uri"
	FormAction     = "form-action"
	FrameAncestors = "frame-ancestors"
)

// Source expressions.
const (
	SourceSelf         = "'self'"
	SourceNone         = "'none'"
	SourceUnsafeInline = "'unsafe-inline'"
	SourceData         = "data:"
)

// Directive is one policy directive and its ordered source list.
type Directive struct {
	Name    string   `json:"name" yaml:"name"`
	Sources []string `json:"sources" yaml:"sources"`
}

// PolicyTable is an ordered list of directives.
type PolicyTable []Directive

// DefaultPolicy returns the base policy served with rendered content.
// style-src allows inline styles for the UI toolkit; script-src never does.
func DefaultPolicy() PolicyTable {
	return PolicyTable{
		{Name: DefaultSrc, Sources: []string{SourceSelf}},
		{Name: ScriptSrc, Sources: []string{SourceSelf}},
		{Name: StyleSrc, Sources: []string{SourceSelf, SourceUnsafeInline}},
		{Name: ImgSrc, Sources: []string{SourceSelf, SourceData, "https:"}},
		{Name: FontSrc, Sources: []string{SourceSelf, SourceData}},
		{Name: ConnectSrc, Sources: []string{SourceSelf}},
		{Name: ObjectSrc, Sources: []string{SourceNone}},
		{Name: BaseURI, Sources: []string{SourceSelf}},
		{Name: FormAction, Sources: []string{SourceSelf}},
		{Name: FrameAncestors, Sources: []string{SourceNone}},
	}
}

// Clone returns a deep copy of the table.
func (p PolicyTable) Clone() PolicyTable {
	out := make(PolicyTable, len(p))
	for i, d := range p {
		out[i] = Directive{Name: d.Name, Sources: append([]string(nil), d.Sources...)}
	}
	return out
}

// Sources returns the source list of the named directive, or nil.
func (p PolicyTable) Sources(name string) []string {
	for _, d := range p {
		if d.Name == name {
			return d.Sources
		}
	}
	return nil
}

// String serializes the table as a header value.
func (p PolicyTable) String() string {
	parts := make([]string, 0, len(p))
	for _, d := range p {
		if len(d.Sources) == 0 {
			parts = append(parts, d.Name)
			continue
		}
		parts = append(parts, d.Name+" "+strings.Join(d.Sources, " "))
	}
	return strings.Join(parts, "; ")
}

// appendSources adds sources to the named directive, creating it at the
// end of the table when absent. Sources already present are skipped.
func (p PolicyTable) appendSources(name string, sources ...string) PolicyTable {
	for i := range p {
		if p[i].Name == name {
			p[i].Sources = appendUnique(p[i].Sources, sources...)
			return p
		}
	}
	return append(p, Directive{Name: name, Sources: appendUnique(nil, sources...)})
}

// set replaces the source list of the named directive.
func (p PolicyTable) set(name string, sources ...string) PolicyTable {
	for i := range p {
		if p[i].Name == name {
			p[i].Sources = append([]string(nil), sources...)
			return p
		}
	}
	return append(p, Directive{Name: name, Sources: append([]string(nil), sources...)})
}

// remove drops a source from the named directive.
func (p PolicyTable) remove(name, source string) {
	for i := range p {
		if p[i].Name != name {
			continue
		}
		kept := p[i].Sources[:0]
		for _, s := range p[i].Sources {
			if s != source {
				kept = append(kept, s)
			}
		}
		p[i].Sources = kept
	}
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
