package relation

import "context"

// Condition is an additional filter combined with the identifier-set scope
// of an operation: every entry must match the document's field value
// exactly. A nil Condition matches every document.
type Condition map[string]any

// Matches reports whether doc satisfies every field requirement.
// Store adapters that filter in memory use this after fetching.
func (c Condition) Matches(doc Document) bool {
	for field, want := range c {
		got, ok := doc.Get(field)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Querier is the store query interface consumed by associations.
// All three operations are scoped to "documents of docType whose identifier
// is in ids", optionally narrowed by cond.
type Querier interface {
	// FindByIDs returns the matching documents ordered by the first
	// appearance of their identifier in ids, each at most once.
	FindByIDs(ctx context.Context, docType string, ids []string, cond Condition) ([]Document, error)

	// DeleteAll removes the matching documents from the store without
	// running any per-document lifecycle hooks. Returns the count removed.
	DeleteAll(ctx context.Context, docType string, ids []string, cond Condition) (int, error)

	// DestroyAll removes the matching documents, running the store's
	// per-document teardown for each. Returns the count destroyed.
	DestroyAll(ctx context.Context, docType string, ids []string, cond Condition) (int, error)
}

// Factory instantiates new, not-yet-persisted documents from an attribute
// mapping. The returned document has a freshly assignable identifier
// (DocumentID may be empty until assigned).
type Factory interface {
	NewDocument(docType string, attrs map[string]any) (Document, error)
}

// Saver is implemented by store adapters that can persist a document's
// fields. The relation package itself never writes; callers and the stream
// handlers persist linkage mutations through this interface.
type Saver interface {
	Save(ctx context.Context, doc Document) error
}
