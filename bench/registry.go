// Package bench compares registered model variants under a fixed
// inference workload and reports per-variant latency and size metrics.
package bench

import "github.com/Eugene-Bulog/dl-general-messaround/nn"

// Variant pairs a unique label with a constructed model.
type Variant struct {
	Label string
	Model nn.Module
}

// Registry holds model variants in insertion order. Registering an
// existing label replaces the model in place; last write wins.
type Registry struct {
	order   []string
	entries map[string]nn.Module
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]nn.Module)}
}

// Register inserts or overwrites the entry for label.
func (r *Registry) Register(label string, model nn.Module) {
	if _, exists := r.entries[label]; !exists {
		r.order = append(r.order, label)
	}
	r.entries[label] = model
}

// Len returns the number of registered variants.
func (r *Registry) Len() int { return len(r.order) }

// Labels returns the registered labels in insertion order.
func (r *Registry) Labels() []string {
	return append([]string(nil), r.order...)
}

// Variants returns (label, model) pairs in insertion order, for
// deterministic reporting.
func (r *Registry) Variants() []Variant {
	out := make([]Variant, 0, len(r.order))
	for _, label := range r.order {
		out = append(out, Variant{Label: label, Model: r.entries[label]})
	}
	return out
}
