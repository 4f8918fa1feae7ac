package relation

// Document is the base interface for all documents managed by this package.
// A document is an addressable entity: a unique identifier, a type name,
// and a mapping of named fields to values. Relationship linkage is stored
// in ordinary fields (an identifier array on the owning side, an inverse
// array or single identifier on the target side).
type Document interface {
	// DocumentID returns the document's unique identifier, or "" if one
	// has not been assigned yet.
	DocumentID() string

	// SetDocumentID assigns the document's identifier.
	SetDocumentID(id string)

	// DocumentType returns the type name (e.g., "person") used to look up
	// relationship declarations and to address the backing collection.
	DocumentType() string

	// Get returns the named field value and whether it is present.
	Get(field string) (any, bool)

	// Set stores the named field value.
	Set(field string, value any)

	// Unset removes the named field entirely.
	Unset(field string)
}

// Doc is a map-backed Document. It is the concrete document type produced
// by the store adapters and is sufficient for most callers; applications
// with typed models can implement Document themselves.
type Doc struct {
	ID     string
	Type   string
	Fields map[string]any
}

// NewDoc creates a Doc of the given type with the given fields.
// The fields map is used directly, not copied; pass nil for an empty doc.
func NewDoc(docType string, fields map[string]any) *Doc {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Doc{Type: docType, Fields: fields}
}

func (d *Doc) DocumentID() string      { return d.ID }
func (d *Doc) SetDocumentID(id string) { d.ID = id }
func (d *Doc) DocumentType() string    { return d.Type }

func (d *Doc) Get(field string) (any, bool) {
	v, ok := d.Fields[field]
	return v, ok
}

func (d *Doc) Set(field string, value any) {
	if d.Fields == nil {
		d.Fields = make(map[string]any)
	}
	d.Fields[field] = value
}

func (d *Doc) Unset(field string) {
	delete(d.Fields, field)
}

// IDs returns the ordered identifier array stored in the named field.
// A missing field, a nil value, or a value of another shape yields nil.
// Store adapters may deliver the array as []any; both forms are accepted.
func IDs(doc Document, field string) []string {
	v, ok := doc.Get(field)
	if !ok || v == nil {
		return nil
	}
	switch ids := v.(type) {
	case []string:
		return ids
	case []any:
		out := make([]string, 0, len(ids))
		for _, e := range ids {
			s, ok := e.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	return nil
}

// SetIDs stores an identifier array in the named field.
func SetIDs(doc Document, field string, ids []string) {
	doc.Set(field, ids)
}
