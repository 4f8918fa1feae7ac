// Package relation maintains bidirectional, array-referenced relationships
// between documents in a document store.
//
// Espalier models a one-to-many relationship by storing an ordered array of
// target identifiers on the parent document rather than a foreign key on
// each child. The package keeps three views of the relationship consistent:
// the parent's stored identifier array, the lazily loaded collection of
// referenced documents, and the optional inverse relationship declared on
// the target type.
//
// # Key Features
//
//   - Ordered identifier arrays: append order is preserved across pushes
//   - Lazy loading: the target collection is fetched once per association
//   - Inverse propagation: pushing a target links it back to the parent
//     through its declared inverse (array or single-reference) without
//     mutual recursion
//   - Dereferencing: unlink both sides without deleting documents
//   - Bulk delete/destroy delegated to the backing store
//   - Wholesale replace via [Graph.Update]
//
// # Declarations
//
// Relationships are declared per document type in a [Registry]:
//
//	reg := relation.NewRegistry()
//	reg.Register(relation.Declaration{
//	    OwnerType:  "person",
//	    Name:       "posts",
//	    TargetType: "post",
//	    Field:      "post_ids",
//	    Kind:       relation.ToManyArray,
//	    InverseOf:  "person",
//	})
//	reg.Register(relation.Declaration{
//	    OwnerType:  "post",
//	    Name:       "person",
//	    TargetType: "person",
//	    Field:      "person_id",
//	    Kind:       relation.ToOne,
//	    InverseOf:  "posts",
//	})
//
// A [Graph] bundles the registry with the store collaborators and hands out
// [Association] instances:
//
//	g, err := relation.New(querier, factory, reg)
//	posts, err := g.Of(person, "posts")
//	err = posts.Push(ctx, post)
//
// # Collaborators
//
// The store itself is out of scope; it is consumed through [Querier]
// (filtered fetch, bulk delete, bulk destroy) and [Factory] (document
// instantiation). The memory, dynamo, and mongo packages provide
// implementations.
//
// # Concurrency
//
// An Association is scoped to one in-memory document graph traversal and is
// not safe for concurrent use; callers serialize access per parent.
//
// # Errors
//
// Configuration problems surface as sentinel errors ([ErrInverseNotDeclared],
// [ErrUnknownRelationship], ...); store and instantiation failures propagate
// unchanged, and no operation leaves a partially materialized cache behind.
package relation
