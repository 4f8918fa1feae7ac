package relation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Graph is the entry point for working with relationships. It bundles the
// declaration registry with the store collaborators and hands out
// association instances bound to a parent document.
type Graph struct {
	registry *Registry
	querier  Querier
	factory  Factory
	newID    func() string
}

// New creates a Graph. The registry is validated so that inverse
// misconfiguration surfaces here rather than at the first mutation.
func New(querier Querier, factory Factory, registry *Registry) (*Graph, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}
	return &Graph{
		registry: registry,
		querier:  querier,
		factory:  factory,
		newID:    uuid.NewString,
	}, nil
}

// Registry returns the graph's declaration registry.
func (g *Graph) Registry() *Registry {
	return g.registry
}

// SetNewID overrides the identifier generator used when a document needs
// an identifier assigned before inverse linking. Defaults to uuid.
func (g *Graph) SetNewID(fn func() string) {
	if fn != nil {
		g.newID = fn
	}
}

// Of returns an association for the named relationship on parent.
// The relationship must be declared with kind [ToManyArray]; each call
// returns a fresh instance with an unmaterialized target cache.
func (g *Graph) Of(parent Document, name string) (*Association, error) {
	decl, ok := g.registry.Lookup(parent.DocumentType(), name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelationship, parent.DocumentType(), name)
	}
	if decl.Kind != ToManyArray {
		return nil, fmt.Errorf("%w: %s.%s is %s", ErrNotArrayRelationship, decl.OwnerType, decl.Name, decl.Kind)
	}
	return &Association{graph: g, parent: parent, decl: decl}, nil
}

// ensureID assigns a fresh identifier if doc does not have one yet.
func (g *Graph) ensureID(doc Document) string {
	id := doc.DocumentID()
	if id == "" {
		id = g.newID()
		doc.SetDocumentID(id)
	}
	return id
}

// Association manages one array-referenced relationship instance: one
// parent document bound to one declaration. It observes and mutates the
// parent's identifier-array field but does not own the parent's lifecycle.
//
// Not safe for concurrent use.
type Association struct {
	graph  *Graph
	parent Document
	decl   Declaration

	// target is the materialized collection; valid only when loaded.
	target []Document
	loaded bool
}

// Parent returns the owning document.
func (a *Association) Parent() Document { return a.parent }

// Declaration returns the relationship declaration this association is
// bound to.
func (a *Association) Declaration() Declaration { return a.decl }

// IDs returns the identifier array currently stored on the parent.
func (a *Association) IDs() []string {
	return IDs(a.parent, a.decl.Field)
}

// Loaded reports whether the target collection has been materialized.
func (a *Association) Loaded() bool { return a.loaded }

// Load returns the materialized target collection, fetching from the store
// on first call only. Later calls return the cache without re-querying,
// until Reset. On fetch failure the cache stays unmaterialized.
func (a *Association) Load(ctx context.Context) ([]Document, error) {
	if a.loaded {
		return a.target, nil
	}
	ids := a.IDs()
	if len(ids) == 0 {
		a.target = nil
		a.loaded = true
		return nil, nil
	}
	docs, err := a.graph.querier.FindByIDs(ctx, a.decl.TargetType, ids, nil)
	if err != nil {
		return nil, fmt.Errorf("load %s.%s: %w", a.decl.OwnerType, a.decl.Name, err)
	}
	a.target = docs
	a.loaded = true
	return a.target, nil
}

// Reset clears the target cache, forcing the next Load to re-fetch.
func (a *Association) Reset() {
	a.target = nil
	a.loaded = false
}
