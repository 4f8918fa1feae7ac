package memory_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jacentio/espalier/memory"
	"github.com/jacentio/espalier/relation"
)

func seed(t *testing.T, s *memory.Store, docs ...*relation.Doc) {
	t.Helper()
	ctx := context.Background()
	for _, doc := range docs {
		if err := s.Save(ctx, doc); err != nil {
			t.Fatalf("seed %s#%s: %v", doc.Type, doc.ID, err)
		}
	}
}

func TestFindByIDs_OrderAndDedup(t *testing.T) {
	s := memory.New()
	seed(t, s,
		&relation.Doc{ID: "a", Type: "post"},
		&relation.Doc{ID: "b", Type: "post"},
		&relation.Doc{ID: "c", Type: "post"},
	)

	docs, err := s.FindByIDs(context.Background(), "post", []string{"c", "a", "c", "missing"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, doc := range docs {
		ids = append(ids, doc.DocumentID())
	}
	if !reflect.DeepEqual(ids, []string{"c", "a"}) {
		t.Errorf("expected [c a], got %v", ids)
	}
}

func TestFindByIDs_Condition(t *testing.T) {
	s := memory.New()
	seed(t, s,
		&relation.Doc{ID: "a", Type: "post", Fields: map[string]any{"draft": true}},
		&relation.Doc{ID: "b", Type: "post", Fields: map[string]any{"draft": false}},
	)

	docs, err := s.FindByIDs(context.Background(), "post", []string{"a", "b"}, relation.Condition{"draft": true})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].DocumentID() != "a" {
		t.Errorf("expected [a], got %v", docs)
	}
}

func TestFindByIDs_EmptyIDs(t *testing.T) {
	s := memory.New()
	docs, err := s.FindByIDs(context.Background(), "post", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if docs != nil {
		t.Errorf("expected nil, got %v", docs)
	}
}

func TestSaveAndGet_CloneIsolation(t *testing.T) {
	s := memory.New()
	doc := &relation.Doc{ID: "a", Type: "post", Fields: map[string]any{"title": "one"}}
	seed(t, s, doc)

	// Mutating the original after save must not change the stored copy.
	doc.Set("title", "two")
	stored, ok := s.Get("post", "a")
	if !ok {
		t.Fatal("expected document to be stored")
	}
	if v, _ := stored.Get("title"); v != "one" {
		t.Errorf("stored title = %v, want one", v)
	}

	// Mutating a fetched copy must not change the stored copy either.
	stored.Set("title", "three")
	again, _ := s.Get("post", "a")
	if v, _ := again.Get("title"); v != "one" {
		t.Errorf("stored title after fetch mutation = %v, want one", v)
	}
}

func TestSave_ClonesIDArrays(t *testing.T) {
	s := memory.New()
	doc := &relation.Doc{ID: "p1", Type: "person"}
	relation.SetIDs(doc, "post_ids", []string{"a"})
	seed(t, s, doc)

	fetched, _ := s.Get("person", "p1")
	ids := relation.IDs(fetched, "post_ids")
	ids[0] = "changed"

	again, _ := s.Get("person", "p1")
	if got := relation.IDs(again, "post_ids"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("stored array mutated through fetched copy: %v", got)
	}
}

func TestDeleteAll(t *testing.T) {
	s := memory.New()
	seed(t, s,
		&relation.Doc{ID: "a", Type: "post"},
		&relation.Doc{ID: "b", Type: "post"},
		&relation.Doc{ID: "c", Type: "post"},
	)

	n, err := s.DeleteAll(context.Background(), "post", []string{"a", "b", "missing"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
	if _, ok := s.Get("post", "a"); ok {
		t.Error("expected a to be deleted")
	}
	if _, ok := s.Get("post", "c"); !ok {
		t.Error("expected c to survive")
	}
}

func TestDeleteAll_Condition(t *testing.T) {
	s := memory.New()
	seed(t, s,
		&relation.Doc{ID: "a", Type: "post", Fields: map[string]any{"draft": true}},
		&relation.Doc{ID: "b", Type: "post", Fields: map[string]any{"draft": false}},
	)

	n, err := s.DeleteAll(context.Background(), "post", []string{"a", "b"}, relation.Condition{"draft": true})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	if _, ok := s.Get("post", "b"); !ok {
		t.Error("expected b to survive")
	}
}

func TestDestroyAll_RunsHook(t *testing.T) {
	s := memory.New()
	seed(t, s,
		&relation.Doc{ID: "a", Type: "post"},
		&relation.Doc{ID: "b", Type: "post"},
	)

	var destroyed []string
	s.OnDestroy(func(ctx context.Context, doc relation.Document) error {
		destroyed = append(destroyed, doc.DocumentID())
		return nil
	})

	n, err := s.DestroyAll(context.Background(), "post", []string{"a", "b"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 destroyed, got %d", n)
	}
	if !reflect.DeepEqual(destroyed, []string{"a", "b"}) {
		t.Errorf("hook ran for %v, want [a b]", destroyed)
	}
}

func TestDestroyAll_HookFailureStops(t *testing.T) {
	s := memory.New()
	seed(t, s,
		&relation.Doc{ID: "a", Type: "post"},
		&relation.Doc{ID: "b", Type: "post"},
	)

	hookErr := errors.New("teardown failed")
	s.OnDestroy(func(ctx context.Context, doc relation.Document) error {
		if doc.DocumentID() == "b" {
			return hookErr
		}
		return nil
	})

	n, err := s.DestroyAll(context.Background(), "post", []string{"a", "b"}, nil)
	if !errors.Is(err, hookErr) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 destroyed before failure, got %d", n)
	}
	if _, ok := s.Get("post", "b"); !ok {
		t.Error("expected b to survive the failed hook")
	}
}

func TestNewDocument(t *testing.T) {
	s := memory.New()

	doc, err := s.NewDocument("preference", map[string]any{"name": "VGA"})
	if err != nil {
		t.Fatal(err)
	}
	if doc.DocumentID() != "" {
		t.Errorf("expected unassigned identifier, got %q", doc.DocumentID())
	}
	if doc.DocumentType() != "preference" {
		t.Errorf("expected type preference, got %q", doc.DocumentType())
	}
	if v, _ := doc.Get("name"); v != "VGA" {
		t.Errorf("expected name VGA, got %v", v)
	}

	// The new document is not persisted.
	if _, ok := s.Get("preference", ""); ok {
		t.Error("expected built document not to be stored")
	}
}

func TestNewDocument_CopiesAttrs(t *testing.T) {
	s := memory.New()
	attrs := map[string]any{"name": "VGA"}

	doc, err := s.NewDocument("preference", attrs)
	if err != nil {
		t.Fatal(err)
	}
	attrs["name"] = "HDMI"
	if v, _ := doc.Get("name"); v != "VGA" {
		t.Errorf("expected attrs to be copied, got %v", v)
	}
}
