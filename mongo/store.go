// Package mongo provides a MongoDB store adapter for the relation package.
// Each document type maps to a collection; the document identifier is the
// "_id" value and fields are stored as ordinary document keys.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jacentio/espalier/internal/idset"
	"github.com/jacentio/espalier/relation"
)

// Config holds configuration for the Store.
type Config struct {
	// Collections maps a document type to its collection name.
	// Types without an entry use the type name as-is.
	Collections map[string]string
}

// collectionFor resolves the collection name for a document type.
func (c Config) collectionFor(docType string) string {
	if name, ok := c.Collections[docType]; ok {
		return name
	}
	return docType
}

// DestroyHook runs before a document is removed by DestroyAll.
type DestroyHook func(ctx context.Context, doc relation.Document) error

// Store implements [relation.Querier] and [relation.Saver] over MongoDB.
type Store struct {
	db     *mongo.Database
	config Config

	beforeDestroy DestroyHook
}

// New creates a new Store instance.
func New(db *mongo.Database, config Config) *Store {
	return &Store{
		db:     db,
		config: config,
	}
}

// OnDestroy registers the per-document teardown run by DestroyAll.
func (s *Store) OnDestroy(hook DestroyHook) {
	s.beforeDestroy = hook
}

// Save upserts the document by identifier.
func (s *Store) Save(ctx context.Context, doc relation.Document) error {
	coll := s.db.Collection(s.config.collectionFor(doc.DocumentType()))
	_, err := coll.ReplaceOne(ctx,
		bson.M{"_id": doc.DocumentID()},
		rawFromDoc(doc),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", doc.DocumentType(), err)
	}
	return nil
}

// FindByIDs implements [relation.Querier] with an $in filter combined with
// cond. MongoDB does not guarantee result order, so documents are
// reordered to the first appearance of their identifier in ids.
func (s *Store) FindByIDs(ctx context.Context, docType string, ids []string, cond relation.Condition) ([]relation.Document, error) {
	uniq := idset.Uniq(ids)
	if len(uniq) == 0 {
		return nil, nil
	}

	coll := s.db.Collection(s.config.collectionFor(docType))
	cur, err := coll.Find(ctx, scopedFilter(uniq, cond))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	found := make(map[string]*relation.Doc, len(uniq))
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		doc := docFromRaw(raw, docType)
		found[doc.ID] = doc
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	return orderByIDs(found, uniq), nil
}

// DeleteAll implements [relation.Querier] with a single DeleteMany.
func (s *Store) DeleteAll(ctx context.Context, docType string, ids []string, cond relation.Condition) (int, error) {
	uniq := idset.Uniq(ids)
	if len(uniq) == 0 {
		return 0, nil
	}

	coll := s.db.Collection(s.config.collectionFor(docType))
	res, err := coll.DeleteMany(ctx, scopedFilter(uniq, cond))
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

// DestroyAll implements [relation.Querier]: each matching document runs
// the registered destroy hook, then is deleted individually. On failure
// the count destroyed so far is returned with the error.
func (s *Store) DestroyAll(ctx context.Context, docType string, ids []string, cond relation.Condition) (int, error) {
	docs, err := s.FindByIDs(ctx, docType, ids, cond)
	if err != nil {
		return 0, err
	}

	coll := s.db.Collection(s.config.collectionFor(docType))
	count := 0
	for _, doc := range docs {
		if s.beforeDestroy != nil {
			if err := s.beforeDestroy(ctx, doc); err != nil {
				return count, err
			}
		}
		if _, err := coll.DeleteOne(ctx, bson.M{"_id": doc.DocumentID()}); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// scopedFilter combines the identifier-set scope with the condition.
func scopedFilter(ids []string, cond relation.Condition) bson.M {
	filter := bson.M{"_id": bson.M{"$in": ids}}
	for field, value := range cond {
		filter[field] = value
	}
	return filter
}

// rawFromDoc flattens a document into a bson map with _id set.
func rawFromDoc(doc relation.Document) bson.M {
	raw := bson.M{"_id": doc.DocumentID()}
	if d, ok := doc.(*relation.Doc); ok {
		for k, v := range d.Fields {
			raw[k] = v
		}
	}
	return raw
}

// docFromRaw converts a decoded bson document. Non-string _id values are
// not produced by this adapter and yield an empty identifier.
func docFromRaw(raw bson.M, docType string) *relation.Doc {
	id, _ := raw["_id"].(string)
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		if arr, ok := v.(bson.A); ok {
			fields[k] = []any(arr)
			continue
		}
		fields[k] = v
	}
	return &relation.Doc{ID: id, Type: docType, Fields: fields}
}

// orderByIDs returns the found documents in first-appearance id order.
func orderByIDs(found map[string]*relation.Doc, ids []string) []relation.Document {
	var docs []relation.Document
	for _, id := range ids {
		if doc, ok := found[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs
}
