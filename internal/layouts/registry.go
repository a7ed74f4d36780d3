package layouts

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"pagecraft-backend/internal/sections"
)

// DefaultLayout is used when a requested layout is unknown.
const DefaultLayout = "sequential"

type Registry struct {
	mu      sync.RWMutex
	layouts map[string]Layout
}

func NewRegistry() *Registry {
	return &Registry{layouts: make(map[string]Layout)}
}

// DefaultRegistry contains the built-in layouts.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, l := range builtins() {
		if err := reg.Register(l); err != nil {
			panic(err)
		}
	}
	return reg
}

func (r *Registry) Register(l Layout) error {
	name := normalizeName(l.Name)
	if name == "" {
		return fmt.Errorf("layout name is empty")
	}
	l.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[name] = l
	return nil
}

// Lookup returns the named layout, or the sequential layout when the name is unknown.
func (r *Registry) Lookup(name string) Layout {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if l, ok := r.layouts[normalizeName(name)]; ok {
		return l
	}
	if l, ok := r.layouts[DefaultLayout]; ok {
		return l
	}
	return sequential()
}

// Names lists registered layouts alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the registered layouts alphabetically.
func (r *Registry) List() []Layout {
	names := r.Names()
	out := make([]Layout, 0, len(names))
	for _, name := range names {
		out = append(out, r.Lookup(name))
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sequential() Layout {
	return Layout{
		Name:        DefaultLayout,
		Description: "Every section in order.",
		Rules:       []Rule{RestRule{Name: "sections"}},
	}
}

func builtins() []Layout {
	return []Layout{
		sequential(),
		{
			Name:        "testimonials",
			Description: "Repeating link, video, text cards; every link starts a new card.",
			Rules: []Rule{
				RepeatRule{
					Name:    "testimonial",
					Starter: sections.KindLink,
					Kinds:   []sections.Kind{sections.KindLink, sections.KindVideo, sections.KindText},
				},
			},
		},
		{
			Name:        "showcase",
			Description: "A hero video, a strip of four videos, a strip of four images and a closing blurb.",
			Rules: []Rule{
				TakeRule{Name: "hero", Kind: sections.KindVideo, Count: 1},
				TakeRule{Name: "video-strip", Kind: sections.KindVideo, Count: 4},
				TakeRule{Name: "image-strip", Kind: sections.KindImage, Count: 4},
				RestRule{Name: "closing", Kinds: []sections.Kind{sections.KindText}},
			},
		},
		{
			Name:        "gallery",
			Description: "An introduction followed by all images, then all videos.",
			Rules: []Rule{
				TakeRule{Name: "intro", Kind: sections.KindText, Count: 1},
				RestRule{Name: "images", Kinds: []sections.Kind{sections.KindImage}},
				RestRule{Name: "videos", Kinds: []sections.Kind{sections.KindVideo}},
			},
		},
	}
}
