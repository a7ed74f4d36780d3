// Package layouts groups the ordered sections of a content document for
// presentation. The grouping conventions belong to each layout, not to the
// template, so the same document can look quite different under two layouts.
package layouts

import (
	"sort"
	"strings"

	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/sections"
)

// Entry is one filled section in display order.
type Entry struct {
	ID     string              `json:"id"`
	Type   sections.Kind       `json:"type"`
	Value  string              `json:"value"`
	Order  int                 `json:"order"`
	Title  string              `json:"title,omitempty"`
	Format sections.TextFormat `json:"format,omitempty"`
}

// Ordered reads the sections of doc back out of their map and sorts them by
// order, breaking ties by id. Titles and text formats come from the schema
// snapshot when the document carries one. Sections left blank are skipped.
func Ordered(doc *models.Content) []Entry {
	entries := make([]Entry, 0, len(doc.Sections))
	for id, v := range doc.Sections {
		if strings.TrimSpace(v.Value) == "" {
			continue
		}
		e := Entry{ID: id, Type: v.Type, Value: v.Value, Order: v.Order}
		if def, ok := doc.Schema.Find(id); ok {
			e.Title = def.Title
			if text, ok := def.Config.(*sections.TextConfig); ok {
				e.Format = text.Format
			}
		}
		if e.Type == sections.KindText && e.Format == "" {
			e.Format = sections.FormatPlain
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Order != entries[j].Order {
			return entries[i].Order < entries[j].Order
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// Group is a named run of entries that a layout presents together.
type Group struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Rule claims entries from what earlier rules left over.
type Rule interface {
	Apply(remaining []Entry) (groups []Group, rest []Entry)
}

// Layout is a named sequence of grouping rules. Entries no rule claims are
// collected in a trailing "more" group so nothing submitted is hidden.
type Layout struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Rules       []Rule `json:"-"`
}

// Arrange applies the layout's rules to entries.
func (l Layout) Arrange(entries []Entry) []Group {
	remaining := append([]Entry(nil), entries...)
	var groups []Group

	for _, rule := range l.Rules {
		var produced []Group
		produced, remaining = rule.Apply(remaining)
		for _, g := range produced {
			if len(g.Entries) > 0 {
				groups = append(groups, g)
			}
		}
	}

	if len(remaining) > 0 {
		groups = append(groups, Group{Name: "more", Entries: remaining})
	}
	return groups
}

// RepeatRule splits entries of the listed kinds into repeating groups, starting
// a new group at every Starter. Entries before the first starter open a group
// of their own.
type RepeatRule struct {
	Name    string
	Starter sections.Kind
	Kinds   []sections.Kind
}

func (r RepeatRule) Apply(remaining []Entry) ([]Group, []Entry) {
	var (
		groups  []Group
		rest    []Entry
		current *Group
	)
	for _, e := range remaining {
		if !hasKind(r.Kinds, e.Type) {
			rest = append(rest, e)
			continue
		}
		if current == nil || e.Type == r.Starter {
			groups = append(groups, Group{Name: r.Name})
			current = &groups[len(groups)-1]
		}
		current.Entries = append(current.Entries, e)
	}
	return groups, rest
}

// TakeRule claims the first Count entries of Kind.
type TakeRule struct {
	Name  string
	Kind  sections.Kind
	Count int
}

func (r TakeRule) Apply(remaining []Entry) ([]Group, []Entry) {
	group := Group{Name: r.Name}
	var rest []Entry
	for _, e := range remaining {
		if e.Type == r.Kind && len(group.Entries) < r.Count {
			group.Entries = append(group.Entries, e)
			continue
		}
		rest = append(rest, e)
	}
	return []Group{group}, rest
}

// RestRule claims every remaining entry of Kinds, or all of them when Kinds is empty.
type RestRule struct {
	Name  string
	Kinds []sections.Kind
}

func (r RestRule) Apply(remaining []Entry) ([]Group, []Entry) {
	group := Group{Name: r.Name}
	var rest []Entry
	for _, e := range remaining {
		if len(r.Kinds) == 0 || hasKind(r.Kinds, e.Type) {
			group.Entries = append(group.Entries, e)
			continue
		}
		rest = append(rest, e)
	}
	return []Group{group}, rest
}

func hasKind(kinds []sections.Kind, k sections.Kind) bool {
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}
