package relation

import "context"

// Update reassigns the named relationship on parent wholesale: existing
// targets are fully dereferenced (inverse fields cleared, identifier array
// emptied), then the new targets are pushed with full inverse linking.
// The resulting association is returned.
//
// This is the entry point for `parent.children = [...]`-style assignment;
// incremental mutation goes through [Association.Push].
func (g *Graph) Update(ctx context.Context, parent Document, name string, targets ...Document) (*Association, error) {
	assoc, err := g.Of(parent, name)
	if err != nil {
		return nil, err
	}
	if err := assoc.DereferenceAll(ctx); err != nil {
		return nil, err
	}
	if err := assoc.Push(ctx, targets...); err != nil {
		return nil, err
	}
	return assoc, nil
}
