package sections

import (
	"fmt"
	"sync"
)

// Descriptor describes a section kind for the template editor.
type Descriptor struct {
	Kind        Kind   `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Accepts     string `json:"accepts"`
	Defaults    Config `json:"defaults"`
}

// Registry stores the descriptors of the section kinds offered in the editor.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[Kind]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[Kind]Descriptor)}
}

// DefaultRegistry returns a registry describing every built-in kind.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, d := range builtinDescriptors() {
		reg.MustRegister(d)
	}
	return reg
}

// Register adds or replaces the descriptor for d.Kind.
func (r *Registry) Register(d Descriptor) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind)
	}
	if d.Defaults == nil {
		d.Defaults = DefaultConfig(d.Kind)
	}
	if d.Defaults.Kind() != d.Kind {
		return fmt.Errorf("defaults for %s describe %s", d.Kind, d.Defaults.Kind())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.descriptors == nil {
		r.descriptors = make(map[Kind]Descriptor)
	}
	r.descriptors[d.Kind] = d
	return nil
}

func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Get returns a copy of the descriptor so callers cannot alter the stored defaults.
func (r *Registry) Get(kind Kind) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[kind]
	if !ok {
		return Descriptor{}, false
	}
	d.Defaults = CloneConfig(d.Defaults)
	return d, true
}

// Defaults returns the registered default config for kind, falling back to
// DefaultConfig when the kind has not been registered.
func (r *Registry) Defaults(kind Kind) Config {
	if d, ok := r.Get(kind); ok {
		return d.Defaults
	}
	return DefaultConfig(kind)
}

// Catalogue lists registered descriptors in kind order.
func (r *Registry) Catalogue() []Descriptor {
	out := make([]Descriptor, 0, len(kinds))
	for _, k := range kinds {
		if d, ok := r.Get(k); ok {
			out = append(out, d)
		}
	}
	return out
}

func builtinDescriptors() []Descriptor {
	return []Descriptor{
		{Kind: KindText, Label: "Text", Description: "Free text with optional length limits.", Accepts: "text"},
		{Kind: KindImage, Label: "Image", Description: "An uploaded image or an image URL.", Accepts: "upload,url"},
		{Kind: KindVideo, Label: "Video", Description: "An uploaded clip, a direct video URL or a YouTube link.", Accepts: "upload,url"},
		{Kind: KindFile, Label: "File", Description: "A downloadable document.", Accepts: "upload"},
		{Kind: KindLink, Label: "Link", Description: "An external URL.", Accepts: "url"},
	}
}
