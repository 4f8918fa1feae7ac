package relation

import (
	"context"
	"fmt"

	"github.com/jacentio/espalier/internal/idset"
)

// Push appends targets to the association: their identifiers are appended
// to the parent's array field, the documents join the target cache, and if
// an inverse is declared each target is linked back to the parent.
//
// Inverse linking always uses the one-sided field primitive on the target,
// never a full push of the counterpart relationship, so a push triggers at
// most one mutation per side regardless of inverse configuration.
func (a *Association) Push(ctx context.Context, targets ...Document) error {
	if len(targets) == 0 {
		return nil
	}

	var inv Declaration
	linked := a.decl.InverseOf != ""
	if linked {
		var err error
		if inv, err = a.graph.registry.Inverse(a.decl); err != nil {
			return err
		}
	}

	// Materialize before appending so order is preserved relative to the
	// existing entries.
	if _, err := a.Load(ctx); err != nil {
		return err
	}
	a.appendLocal(targets...)

	if !linked {
		return nil
	}

	// The inverse side needs the parent's identifier to link back.
	parentID := a.graph.ensureID(a.parent)
	for _, target := range targets {
		switch inv.Kind {
		case ToManyArray:
			SetIDs(target, inv.Field, idset.Append(IDs(target, inv.Field), parentID))
		case ToOne:
			target.Set(inv.Field, parentID)
		}
	}
	return nil
}

// Concat is an alias for Push.
func (a *Association) Concat(ctx context.Context, targets ...Document) error {
	return a.Push(ctx, targets...)
}

// appendLocal mutates this side only: parent identifier array plus target
// cache. It never touches the inverse side, which is what makes inverse
// propagation terminate.
func (a *Association) appendLocal(targets ...Document) {
	ids := a.IDs()
	for _, target := range targets {
		a.graph.ensureID(target)
		ids = idset.Append(ids, target.DocumentID())
		a.target = append(a.target, target)
	}
	SetIDs(a.parent, a.decl.Field, ids)
}

// Build instantiates a new document of docType (or the declared target
// type when docType is "") from attrs and pushes it. The new document is
// returned; instantiation failure propagates before any linkage occurs.
func (a *Association) Build(ctx context.Context, attrs map[string]any, docType string) (Document, error) {
	if docType == "" {
		docType = a.decl.TargetType
	}
	if _, err := a.Load(ctx); err != nil {
		return nil, err
	}
	doc, err := a.graph.factory.NewDocument(docType, attrs)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", docType, err)
	}
	if err := a.Push(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DereferenceAll unlinks every target without deleting it: inverse linkage
// fields are cleared on each target, the parent's identifier array is
// emptied, and the association is reset so the next Load re-fetches (now
// empty). No store writes or deletes are issued.
func (a *Association) DereferenceAll(ctx context.Context) error {
	targets, err := a.Load(ctx)
	if err != nil {
		return err
	}

	if a.decl.InverseOf != "" {
		inv, err := a.graph.registry.Inverse(a.decl)
		if err != nil {
			return err
		}
		parentID := a.parent.DocumentID()
		for _, target := range targets {
			switch inv.Kind {
			case ToManyArray:
				SetIDs(target, inv.Field, idset.Remove(IDs(target, inv.Field), parentID))
			case ToOne:
				target.Unset(inv.Field)
			}
		}
	}

	SetIDs(a.parent, a.decl.Field, []string{})
	a.Reset()
	return nil
}

// DeleteAll bulk-removes the current targets matching cond from the store,
// without lifecycle hooks, and returns the count removed. The cache is
// reset on success only; the parent's identifier array is left untouched.
func (a *Association) DeleteAll(ctx context.Context, cond Condition) (int, error) {
	n, err := a.graph.querier.DeleteAll(ctx, a.decl.TargetType, a.IDs(), cond)
	if err != nil {
		return 0, fmt.Errorf("delete_all %s.%s: %w", a.decl.OwnerType, a.decl.Name, err)
	}
	a.Reset()
	return n, nil
}

// DestroyAll bulk-removes the current targets matching cond, running the
// store's per-document teardown for each, and returns the count destroyed.
// The cache is reset on success only.
func (a *Association) DestroyAll(ctx context.Context, cond Condition) (int, error) {
	n, err := a.graph.querier.DestroyAll(ctx, a.decl.TargetType, a.IDs(), cond)
	if err != nil {
		return 0, fmt.Errorf("destroy_all %s.%s: %w", a.decl.OwnerType, a.decl.Name, err)
	}
	a.Reset()
	return n, nil
}
