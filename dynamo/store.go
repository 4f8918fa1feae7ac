// Package dynamo provides a DynamoDB store adapter for the relation
// package. Each document type maps to a table keyed by an "id" string
// attribute; document fields are stored as ordinary item attributes.
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/espalier/internal/idset"
	"github.com/jacentio/espalier/relation"
)

const (
	// idAttr is the partition key attribute on every table.
	idAttr = "id"

	// typeAttr records the document type on each item, for consumers such
	// as stream handlers that see raw items without table context.
	typeAttr = "doc_type"

	maxBatchGet   = 100
	maxBatchWrite = 25
)

// DestroyHook runs before a document is removed by DestroyAll.
type DestroyHook func(ctx context.Context, doc relation.Document) error

// Store implements [relation.Querier] and [relation.Saver] over DynamoDB.
type Store struct {
	client *dynamodb.Client
	config Config

	beforeDestroy DestroyHook
}

// New creates a new Store instance.
func New(client *dynamodb.Client, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
	}
}

// OnDestroy registers the per-document teardown run by DestroyAll.
func (s *Store) OnDestroy(hook DestroyHook) {
	s.beforeDestroy = hook
}

// Save writes the document's fields as a single item.
func (s *Store) Save(ctx context.Context, doc relation.Document) error {
	item, err := marshalDoc(doc)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.tableFor(doc.DocumentType())),
		Item:      item,
	})
	return err
}

// FindByIDs implements [relation.Querier]. Items are fetched with
// BatchGetItem in chunks, filtered by cond in memory, and returned in
// first-appearance order of ids.
func (s *Store) FindByIDs(ctx context.Context, docType string, ids []string, cond relation.Condition) ([]relation.Document, error) {
	uniq := idset.Uniq(ids)
	if len(uniq) == 0 {
		return nil, nil
	}

	table := s.config.tableFor(docType)
	found := make(map[string]*relation.Doc, len(uniq))

	for _, chunk := range chunkIDs(uniq, maxBatchGet) {
		keys := make([]map[string]types.AttributeValue, len(chunk))
		for i, id := range chunk {
			keys[i] = keyFor(id)
		}

		for attempt := 0; len(keys) > 0; attempt++ {
			if attempt >= s.config.MaxBatchAttempts {
				return nil, fmt.Errorf("dynamo: %d keys unprocessed after %d attempts", len(keys), attempt)
			}
			out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: map[string]types.KeysAndAttributes{
					table: {Keys: keys},
				},
			})
			if err != nil {
				return nil, err
			}
			for _, raw := range out.Responses[table] {
				doc, err := unmarshalDoc(raw, docType)
				if err != nil {
					return nil, err
				}
				found[doc.ID] = doc
			}
			keys = out.UnprocessedKeys[table].Keys
		}
	}

	var docs []relation.Document
	for _, id := range uniq {
		doc, ok := found[id]
		if !ok || !cond.Matches(doc) {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// DeleteAll implements [relation.Querier]: the matching documents are
// fetched to evaluate cond and establish the affected count, then removed
// with BatchWriteItem. No per-document hooks run.
func (s *Store) DeleteAll(ctx context.Context, docType string, ids []string, cond relation.Condition) (int, error) {
	docs, err := s.FindByIDs(ctx, docType, ids, cond)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	table := s.config.tableFor(docType)
	var requests []types.WriteRequest
	for _, doc := range docs {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: keyFor(doc.DocumentID())},
		})
	}

	for _, chunk := range chunkWrites(requests, maxBatchWrite) {
		pending := chunk
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt >= s.config.MaxBatchAttempts {
				return 0, fmt.Errorf("dynamo: %d deletes unprocessed after %d attempts", len(pending), attempt)
			}
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{table: pending},
			})
			if err != nil {
				return 0, err
			}
			pending = out.UnprocessedItems[table]
		}
	}
	return len(docs), nil
}

// DestroyAll implements [relation.Querier]: each matching document runs
// the registered destroy hook, then is deleted individually. On failure
// the count destroyed so far is returned with the error.
func (s *Store) DestroyAll(ctx context.Context, docType string, ids []string, cond relation.Condition) (int, error) {
	docs, err := s.FindByIDs(ctx, docType, ids, cond)
	if err != nil {
		return 0, err
	}

	table := s.config.tableFor(docType)
	count := 0
	for _, doc := range docs {
		if s.beforeDestroy != nil {
			if err := s.beforeDestroy(ctx, doc); err != nil {
				return count, err
			}
		}
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(table),
			Key:       keyFor(doc.DocumentID()),
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// keyFor builds the primary key for a document identifier.
func keyFor(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		idAttr: &types.AttributeValueMemberS{Value: id},
	}
}

// marshalDoc converts a document to a DynamoDB item. The identifier and
// document type are stored alongside the fields.
func marshalDoc(doc relation.Document) (map[string]types.AttributeValue, error) {
	fields := fieldsOf(doc)
	item, err := attributevalue.MarshalMap(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", doc.DocumentType(), err)
	}
	item[idAttr] = &types.AttributeValueMemberS{Value: doc.DocumentID()}
	item[typeAttr] = &types.AttributeValueMemberS{Value: doc.DocumentType()}
	return item, nil
}

// unmarshalDoc converts a DynamoDB item back into a document.
func unmarshalDoc(item map[string]types.AttributeValue, docType string) (*relation.Doc, error) {
	var fields map[string]any
	if err := attributevalue.UnmarshalMap(item, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", docType, err)
	}
	id, _ := fields[idAttr].(string)
	delete(fields, idAttr)
	delete(fields, typeAttr)
	return &relation.Doc{ID: id, Type: docType, Fields: fields}, nil
}

// fieldsOf snapshots a document's fields for marshaling.
func fieldsOf(doc relation.Document) map[string]any {
	if d, ok := doc.(*relation.Doc); ok {
		return d.Fields
	}
	return nil
}

// chunkIDs splits ids into slices of at most n.
func chunkIDs(ids []string, n int) [][]string {
	var chunks [][]string
	for len(ids) > n {
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

// chunkWrites splits write requests into slices of at most n.
func chunkWrites(reqs []types.WriteRequest, n int) [][]types.WriteRequest {
	var chunks [][]types.WriteRequest
	for len(reqs) > n {
		chunks = append(chunks, reqs[:n])
		reqs = reqs[n:]
	}
	if len(reqs) > 0 {
		chunks = append(chunks, reqs)
	}
	return chunks
}
