// Package memory provides an in-memory store adapter for the relation
// package. It implements [relation.Querier], [relation.Factory], and
// [relation.Saver] over a mutex-guarded map, and is the reference backend
// for tests and embedded use.
package memory

import (
	"context"
	"sync"

	"github.com/jacentio/espalier/internal/idset"
	"github.com/jacentio/espalier/relation"
)

// DestroyHook runs before a document is removed by DestroyAll.
// Returning an error aborts the destroy pass.
type DestroyHook func(ctx context.Context, doc relation.Document) error

// Store is an in-memory document store.
// Documents are cloned on save and on read, so in-memory mutations are
// invisible until saved again, matching a real store's behavior.
type Store struct {
	mu   sync.RWMutex
	docs map[string]map[string]*relation.Doc // docType -> id -> doc

	beforeDestroy DestroyHook
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		docs: make(map[string]map[string]*relation.Doc),
	}
}

// OnDestroy registers the per-document teardown run by DestroyAll.
func (s *Store) OnDestroy(hook DestroyHook) {
	s.beforeDestroy = hook
}

// Save persists a copy of doc, keyed by type and identifier.
func (s *Store) Save(ctx context.Context, doc relation.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.docs[doc.DocumentType()]
	if !ok {
		byID = make(map[string]*relation.Doc)
		s.docs[doc.DocumentType()] = byID
	}
	byID[doc.DocumentID()] = clone(doc)
	return nil
}

// Get returns a copy of the stored document, if present.
func (s *Store) Get(docType, id string) (*relation.Doc, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[docType][id]
	if !ok {
		return nil, false
	}
	return clone(doc), true
}

// FindByIDs implements [relation.Querier]: matching documents are returned
// in first-appearance order of ids, each at most once.
func (s *Store) FindByIDs(ctx context.Context, docType string, ids []string, cond relation.Condition) ([]relation.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []relation.Document
	for _, id := range idset.Uniq(ids) {
		doc, ok := s.docs[docType][id]
		if !ok || !cond.Matches(doc) {
			continue
		}
		out = append(out, clone(doc))
	}
	return out, nil
}

// DeleteAll implements [relation.Querier]: raw bulk removal, no hooks.
func (s *Store) DeleteAll(ctx context.Context, docType string, ids []string, cond relation.Condition) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, id := range idset.Uniq(ids) {
		doc, ok := s.docs[docType][id]
		if !ok || !cond.Matches(doc) {
			continue
		}
		delete(s.docs[docType], id)
		count++
	}
	return count, nil
}

// DestroyAll implements [relation.Querier]: like DeleteAll but the
// registered destroy hook runs for each document before removal. On hook
// failure the error propagates with the count removed so far.
func (s *Store) DestroyAll(ctx context.Context, docType string, ids []string, cond relation.Condition) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, id := range idset.Uniq(ids) {
		doc, ok := s.docs[docType][id]
		if !ok || !cond.Matches(doc) {
			continue
		}
		if s.beforeDestroy != nil {
			if err := s.beforeDestroy(ctx, clone(doc)); err != nil {
				return count, err
			}
		}
		delete(s.docs[docType], id)
		count++
	}
	return count, nil
}

// NewDocument implements [relation.Factory]. The document is not persisted
// and has no identifier until one is assigned.
func (s *Store) NewDocument(docType string, attrs map[string]any) (relation.Document, error) {
	fields := make(map[string]any, len(attrs))
	for k, v := range attrs {
		fields[k] = v
	}
	return relation.NewDoc(docType, fields), nil
}

// clone copies a document's fields. Identifier arrays are copied so edits
// to a returned document never alias stored state.
func clone(doc relation.Document) *relation.Doc {
	src, ok := doc.(*relation.Doc)
	if !ok {
		out := relation.NewDoc(doc.DocumentType(), nil)
		out.SetDocumentID(doc.DocumentID())
		return out
	}
	fields := make(map[string]any, len(src.Fields))
	for k, v := range src.Fields {
		if ids, ok := v.([]string); ok {
			cp := make([]string, len(ids))
			copy(cp, ids)
			fields[k] = cp
			continue
		}
		fields[k] = v
	}
	return &relation.Doc{ID: src.ID, Type: src.Type, Fields: fields}
}
