package ash

import "sort"

// Profile is a node's resolved attribute bag at a point in time (or its
// aggregate over the node's lifetime). Profiles are snapshots: mutating a
// profile never writes back into the registry.
type Profile struct {
	Node  NodeID
	Attrs Attrs
}

// NewProfile creates a profile for node with a copy of attrs.
func NewProfile(node NodeID, attrs Attrs) *Profile {
	return &Profile{Node: node, Attrs: attrs.Clone()}
}

// Get returns the named attribute, ok reports whether it is set.
func (p *Profile) Get(name string) (AttrValue, bool) {
	v, ok := p.Attrs[name]
	return v, ok
}

// Set assigns an attribute on the profile copy.
func (p *Profile) Set(name string, v AttrValue) {
	if p.Attrs == nil {
		p.Attrs = make(Attrs)
	}
	p.Attrs[name] = v
}

// Has reports whether the named attribute is set.
func (p *Profile) Has(name string) bool {
	_, ok := p.Attrs[name]
	return ok
}

// Names returns the sorted attribute names.
func (p *Profile) Names() []string {
	out := make([]string, 0, len(p.Attrs))
	for k := range p.Attrs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether two profiles carry identical attribute bags. Node
// ids are not compared, matching profiles across different nodes is the
// whole point of profile comparison.
func (p *Profile) Equal(o *Profile) bool {
	if len(p.Attrs) != len(o.Attrs) {
		return false
	}
	for k, v := range p.Attrs {
		ov, ok := o.Attrs[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
