package retouch

import "github.com/google/uuid"

// Layer is an AI-generated overlay raster plus the prompt that produced
// it. The id stays stable across edits to the same layer; the raster and
// prompt are replaced wholesale when the layer is re-edited.
type Layer struct {
	id     string
	raster *Raster
	prompt string
}

// NewLayer creates a layer with a fresh id.
func NewLayer(raster *Raster, prompt string) *Layer {
	return &Layer{id: uuid.NewString(), raster: raster, prompt: prompt}
}

// ID returns the layer's stable identifier.
func (l *Layer) ID() string { return l.id }

// Raster returns the layer's overlay raster.
func (l *Layer) Raster() *Raster { return l.raster }

// Prompt returns the provenance prompt that produced the raster.
func (l *Layer) Prompt() string { return l.prompt }

// LayerSet is an ordered collection of layers belonging to one history
// entry. Composite order equals insertion order: later layers draw on top.
// A LayerSet value is cheap to copy; the layers themselves are immutable
// once part of a pushed entry.
type LayerSet struct {
	layers []*Layer
}

// Layers builds a LayerSet from the given layers in order.
func Layers(layers ...*Layer) LayerSet {
	return LayerSet{layers: layers}
}

// Len returns the number of layers.
func (s LayerSet) Len() int { return len(s.layers) }

// All returns the layers in composite order. Callers must not modify the
// returned slice.
func (s LayerSet) All() []*Layer { return s.layers }

// Get returns the layer with the given id, or nil if absent.
func (s LayerSet) Get(id string) *Layer {
	for _, l := range s.layers {
		if l.id == id {
			return l
		}
	}
	return nil
}

// Add returns a new set with the layer appended at the top of the
// composite order.
func (s LayerSet) Add(l *Layer) LayerSet {
	out := make([]*Layer, len(s.layers)+1)
	copy(out, s.layers)
	out[len(s.layers)] = l
	return LayerSet{layers: out}
}

// Replace returns a new set in which the layer with the given id keeps its
// id and position but carries the new raster and prompt. Returns
// ErrNoSuchLayer if the id is absent.
func (s LayerSet) Replace(id string, raster *Raster, prompt string) (LayerSet, error) {
	out := make([]*Layer, len(s.layers))
	found := false
	for i, l := range s.layers {
		if l.id == id {
			out[i] = &Layer{id: id, raster: raster, prompt: prompt}
			found = true
		} else {
			out[i] = l
		}
	}
	if !found {
		return LayerSet{}, ErrNoSuchLayer
	}
	return LayerSet{layers: out}, nil
}

// Remove returns a new set without the layer with the given id, preserving
// the relative order of the rest. Deleting and re-adding a layer changes
// its composite position. Returns ErrNoSuchLayer if the id is absent.
func (s LayerSet) Remove(id string) (LayerSet, error) {
	if s.Get(id) == nil {
		return LayerSet{}, ErrNoSuchLayer
	}
	out := make([]*Layer, 0, len(s.layers)-1)
	for _, l := range s.layers {
		if l.id != id {
			out = append(out, l)
		}
	}
	return LayerSet{layers: out}, nil
}

// CloneRasters returns a new set with every layer's raster re-identified
// via Raster.Clone, keeping layer ids and prompts. Used when a new history
// entry carries forward the previous entry's layers: each entry must own
// its rasters exclusively.
func (s LayerSet) CloneRasters() LayerSet {
	out := make([]*Layer, len(s.layers))
	for i, l := range s.layers {
		out[i] = &Layer{id: l.id, raster: l.raster.Clone(), prompt: l.prompt}
	}
	return LayerSet{layers: out}
}

// IDs returns the layer ids in composite order.
func (s LayerSet) IDs() []string {
	out := make([]string, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.id
	}
	return out
}
