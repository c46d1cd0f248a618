// Package graph builds the class inheritance hierarchy of mined records.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/docvault/internal/storage"
)

// ErrClassNotFound is returned when a name matches no class.
var ErrClassNotFound = errors.New("class not found")

// Class is one vertex of the hierarchy. External classes are superclasses
// referenced by a record but never mined themselves.
type Class struct {
	ID           string   `json:"id"` // {language}:{identifier}
	Identifier   string   `json:"identifier"`
	Language     string   `json:"language"`
	Path         string   `json:"path,omitempty"`
	Superclasses []string `json:"superclasses,omitempty"`
	External     bool     `json:"external,omitempty"`
}

// Related is a class reached from another one, with its distance.
type Related struct {
	Class *Class `json:"class"`
	Depth int    `json:"depth"`
}

// Hierarchy holds class → superclass edges and their reverse.
type Hierarchy struct {
	up      graph.Graph[string, *Class] // class -> superclass
	down    graph.Graph[string, *Class] // superclass -> class
	classes map[string]*Class
}

func classHash(c *Class) string { return c.ID }

// ClassID builds the vertex id of a class.
func ClassID(language, identifier string) string {
	return language + ":" + identifier
}

// Build creates the hierarchy from class records. Superclass names resolve
// within the same language, first by full identifier, then by a unique
// simple name. Edges that would close a cycle are dropped.
func Build(classes []Class) (*Hierarchy, error) {
	h := &Hierarchy{
		up:      graph.New(classHash, graph.Directed(), graph.PreventCycles()),
		down:    graph.New(classHash, graph.Directed(), graph.PreventCycles()),
		classes: make(map[string]*Class, len(classes)),
	}

	simple := make(map[string][]string) // language:simple name -> ids
	for i := range classes {
		c := classes[i]
		c.ID = ClassID(c.Language, c.Identifier)
		if _, dup := h.classes[c.ID]; dup {
			continue
		}
		if err := h.addVertex(&c); err != nil {
			return nil, err
		}
		key := ClassID(c.Language, SimpleName(c.Identifier))
		simple[key] = append(simple[key], c.ID)
	}

	ids := h.sortedIDs()
	for _, id := range ids {
		c := h.classes[id]
		for _, super := range c.Superclasses {
			target, err := h.resolveSuper(c.Language, super, simple)
			if err != nil {
				return nil, err
			}
			if target == c.ID {
				continue
			}
			if err := h.up.AddEdge(c.ID, target); err != nil {
				if errors.Is(err, graph.ErrEdgeAlreadyExists) {
					continue
				}
				if errors.Is(err, graph.ErrEdgeCreatesCycle) {
					log.Printf("Warning: skipping inheritance cycle %s -> %s\n", c.ID, target)
					continue
				}
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", c.ID, target, err)
			}
			if err := h.down.AddEdge(target, c.ID); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", target, c.ID, err)
			}
		}
	}
	return h, nil
}

// FromVault builds the hierarchy from every class record in the vault.
func FromVault(reader *storage.RecordReader) (*Hierarchy, error) {
	records, err := reader.ListRecords(storage.RecordFilter{Kind: "class"})
	if err != nil {
		return nil, err
	}

	classes := make([]Class, 0, len(records))
	for _, rec := range records {
		var payload struct {
			Superclasses []string `json:"superclasses"`
		}
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", rec.ID, err)
		}
		classes = append(classes, Class{
			Identifier:   rec.Identifier,
			Language:     rec.Language,
			Path:         rec.FilePath,
			Superclasses: payload.Superclasses,
		})
	}
	return Build(classes)
}

func (h *Hierarchy) addVertex(c *Class) error {
	h.classes[c.ID] = c
	if err := h.up.AddVertex(c); err != nil {
		return fmt.Errorf("failed to add class %s: %w", c.ID, err)
	}
	if err := h.down.AddVertex(c); err != nil {
		return fmt.Errorf("failed to add class %s: %w", c.ID, err)
	}
	return nil
}

func (h *Hierarchy) resolveSuper(language, name string, simple map[string][]string) (string, error) {
	name = cleanSuperName(name)
	if id := ClassID(language, name); h.classes[id] != nil {
		return id, nil
	}
	if ids := simple[ClassID(language, SimpleName(name))]; len(ids) == 1 {
		return ids[0], nil
	}

	id := ClassID(language, name)
	if _, ok := h.classes[id]; !ok {
		if err := h.addVertex(&Class{ID: id, Identifier: name, Language: language, External: true}); err != nil {
			return "", err
		}
	}
	return id, nil
}

// cleanSuperName drops type arguments and qualifiers around a superclass reference.
func cleanSuperName(name string) string {
	name = strings.TrimSpace(name)
	for _, open := range []string{"<", "[", "("} {
		if i := strings.Index(name, open); i > 0 {
			name = name[:i]
		}
	}
	fields := strings.Fields(name)
	if len(fields) > 0 {
		name = fields[len(fields)-1] // "public Base" -> "Base"
	}
	return strings.TrimPrefix(strings.ReplaceAll(name, "::", "."), "\\")
}

// SimpleName returns the last segment of a dotted, scoped or namespaced name.
func SimpleName(name string) string {
	name = strings.ReplaceAll(strings.ReplaceAll(name, "::", "."), "\\", ".")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Resolve returns the ids of classes matching name: a vertex id, a full
// identifier in any language, or a simple name.
func (h *Hierarchy) Resolve(name string) []string {
	if _, ok := h.classes[name]; ok {
		return []string{name}
	}

	var exact, bySimple []string
	for _, id := range h.sortedIDs() {
		c := h.classes[id]
		switch {
		case c.Identifier == name:
			exact = append(exact, id)
		case SimpleName(c.Identifier) == name:
			bySimple = append(bySimple, id)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return bySimple
}

// Class returns a class by id.
func (h *Hierarchy) Class(id string) (*Class, bool) {
	c, ok := h.classes[id]
	return c, ok
}

// Ancestors returns every superclass of the named class, nearest first.
func (h *Hierarchy) Ancestors(name string) ([]Related, error) {
	return h.walk(h.up, name)
}

// Descendants returns every subclass of the named class, nearest first.
func (h *Hierarchy) Descendants(name string) ([]Related, error) {
	return h.walk(h.down, name)
}

func (h *Hierarchy) walk(g graph.Graph[string, *Class], name string) ([]Related, error) {
	ids := h.Resolve(name)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy: %w", err)
	}

	// Breadth-first from every match; the first visit of a class is its
	// shortest distance.
	depths := make(map[string]int)
	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		depths[id] = 0
		queue = append(queue, id)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for next := range adjacency[id] {
			if _, seen := depths[next]; seen {
				continue
			}
			depths[next] = depths[id] + 1
			queue = append(queue, next)
		}
	}
	for _, id := range ids {
		delete(depths, id)
	}

	out := make([]Related, 0, len(depths))
	for id, depth := range depths {
		out = append(out, Related{Class: h.classes[id], Depth: depth})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].Class.ID < out[j].Class.ID
	})
	return out, nil
}

// Sorted lists every class with superclasses before their subclasses,
// ties broken by id.
func (h *Hierarchy) Sorted() ([]*Class, error) {
	ids, err := graph.StableTopologicalSort(h.down, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("failed to sort hierarchy: %w", err)
	}
	out := make([]*Class, len(ids))
	for i, id := range ids {
		out[i] = h.classes[id]
	}
	return out, nil
}

// Size returns the number of classes and inheritance edges.
func (h *Hierarchy) Size() (classes, edges int, err error) {
	edges, err = h.up.Size()
	return len(h.classes), edges, err
}

func (h *Hierarchy) sortedIDs() []string {
	ids := make([]string, 0, len(h.classes))
	for id := range h.classes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
