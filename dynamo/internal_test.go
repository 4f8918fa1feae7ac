package dynamo

import (
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/espalier/relation"
)

// --- Config Tests ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TablePrefix != "espalier_" {
		t.Errorf("expected prefix 'espalier_', got %q", cfg.TablePrefix)
	}
	if cfg.MaxBatchAttempts != 3 {
		t.Errorf("expected 3 batch attempts, got %d", cfg.MaxBatchAttempts)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.validate()
	if cfg.TablePrefix != "espalier_" {
		t.Errorf("expected default prefix, got %q", cfg.TablePrefix)
	}
	if cfg.MaxBatchAttempts != 3 {
		t.Errorf("expected default batch attempts, got %d", cfg.MaxBatchAttempts)
	}

	cfg = Config{TablePrefix: "custom_", MaxBatchAttempts: 5}
	cfg.validate()
	if cfg.TablePrefix != "custom_" || cfg.MaxBatchAttempts != 5 {
		t.Errorf("validate overwrote explicit values: %+v", cfg)
	}
}

func TestConfig_TableFor(t *testing.T) {
	cfg := Config{
		Tables:      map[string]string{"person": "people"},
		TablePrefix: "espalier_",
	}

	if got := cfg.tableFor("person"); got != "people" {
		t.Errorf("expected mapped table 'people', got %q", got)
	}
	if got := cfg.tableFor("post"); got != "espalier_post" {
		t.Errorf("expected fallback 'espalier_post', got %q", got)
	}
}

// --- Chunking Tests ---

func TestChunkIDs(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		n        int
		expected []int // chunk sizes
	}{
		{"empty", 0, 2, nil},
		{"under", 1, 2, []int{1}},
		{"exact", 2, 2, []int{2}},
		{"over", 5, 2, []int{2, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]string, tt.count)
			chunks := chunkIDs(ids, tt.n)
			var sizes []int
			for _, c := range chunks {
				sizes = append(sizes, len(c))
			}
			if !reflect.DeepEqual(sizes, tt.expected) {
				t.Errorf("chunk sizes = %v, want %v", sizes, tt.expected)
			}
		})
	}
}

func TestChunkWrites(t *testing.T) {
	reqs := make([]types.WriteRequest, 51)
	chunks := chunkWrites(reqs, maxBatchWrite)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 25 || len(chunks[1]) != 25 || len(chunks[2]) != 1 {
		t.Errorf("chunk sizes = %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

// --- Marshal Tests ---

func TestKeyFor(t *testing.T) {
	key := keyFor("x1")
	s, ok := key[idAttr].(*types.AttributeValueMemberS)
	if !ok || s.Value != "x1" {
		t.Errorf("unexpected key: %v", key)
	}
}

func TestMarshalDoc(t *testing.T) {
	doc := &relation.Doc{
		ID:   "x1",
		Type: "post",
		Fields: map[string]any{
			"title":      "hello",
			"person_id":  "p1",
			"reader_ids": []string{"a", "b"},
		},
	}

	item, err := marshalDoc(doc)
	if err != nil {
		t.Fatal(err)
	}

	if v, ok := item[idAttr].(*types.AttributeValueMemberS); !ok || v.Value != "x1" {
		t.Errorf("id attribute = %v", item[idAttr])
	}
	if v, ok := item[typeAttr].(*types.AttributeValueMemberS); !ok || v.Value != "post" {
		t.Errorf("doc_type attribute = %v", item[typeAttr])
	}
	if v, ok := item["title"].(*types.AttributeValueMemberS); !ok || v.Value != "hello" {
		t.Errorf("title attribute = %v", item["title"])
	}
	if _, ok := item["reader_ids"].(*types.AttributeValueMemberL); !ok {
		t.Errorf("reader_ids attribute = %v", item["reader_ids"])
	}
}

func TestUnmarshalDoc_RoundTrip(t *testing.T) {
	src := &relation.Doc{
		ID:   "x1",
		Type: "post",
		Fields: map[string]any{
			"title":      "hello",
			"reader_ids": []string{"a", "b"},
		},
	}

	item, err := marshalDoc(src)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := unmarshalDoc(item, "post")
	if err != nil {
		t.Fatal(err)
	}

	if doc.ID != "x1" || doc.Type != "post" {
		t.Errorf("identity = %s/%s, want x1/post", doc.ID, doc.Type)
	}
	if _, ok := doc.Fields[idAttr]; ok {
		t.Error("id attribute leaked into fields")
	}
	if _, ok := doc.Fields[typeAttr]; ok {
		t.Error("doc_type attribute leaked into fields")
	}
	if v, _ := doc.Get("title"); v != "hello" {
		t.Errorf("title = %v, want hello", v)
	}

	// Lists come back as []any; the relation helpers accept that shape.
	ids := relation.IDs(doc, "reader_ids")
	if !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Errorf("reader_ids = %v, want [a b]", ids)
	}
}
