package analysis

import (
	"bytes"
	"encoding/json"
)

// Profile maps tool IDs to observations, remembering insertion order.
// Setting an existing ID replaces its observation in place.
type Profile struct {
	order []ID
	obs   map[ID]Observation
}

// NewProfile returns an empty profile.
func NewProfile() *Profile {
	return &Profile{obs: make(map[ID]Observation)}
}

// Set stores obs under its tool ID.
func (p *Profile) Set(obs Observation) {
	id := obs.ToolID()
	if _, ok := p.obs[id]; !ok {
		p.order = append(p.order, id)
	}
	p.obs[id] = obs
}

// Get returns the observation stored for id.
func (p *Profile) Get(id ID) (Observation, bool) {
	o, ok := p.obs[id]
	return o, ok
}

// Has reports whether id has an observation.
func (p *Profile) Has(id ID) bool {
	_, ok := p.obs[id]
	return ok
}

// IDs returns the stored tool IDs in insertion order.
func (p *Profile) IDs() []ID {
	return append([]ID(nil), p.order...)
}

// Len returns the number of stored observations.
func (p *Profile) Len() int {
	return len(p.order)
}

// Clone returns a shallow copy. Observations are never mutated once
// stored, so sharing them is safe.
func (p *Profile) Clone() *Profile {
	c := NewProfile()
	for _, id := range p.order {
		c.Set(p.obs[id])
	}
	return c
}

// Lookup returns the observation for id if it has type T.
func Lookup[T Observation](p *Profile, id ID) (T, bool) {
	var zero T
	o, ok := p.obs[id]
	if !ok {
		return zero, false
	}
	t, ok := o.(T)
	return t, ok
}

// MarshalJSON encodes the profile as an object in insertion order.
func (p *Profile) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range p.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(id))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.obs[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
