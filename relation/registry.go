package relation

import (
	"fmt"
	"sort"
)

// Kind identifies how a relationship stores its linkage.
type Kind string

const (
	// ToManyArray stores an ordered array of target identifiers on the
	// declaring side (e.g., "preference_ids" on a person).
	ToManyArray Kind = "to-many-array"

	// ToOne stores a single identifier on the declaring side
	// (e.g., "person_id" on a post).
	ToOne Kind = "to-one"
)

// Declaration describes one relationship declared on a document type.
// Declarations are per type, not per instance.
type Declaration struct {
	// OwnerType is the declaring document type (e.g., "person").
	OwnerType string

	// Name is the relationship name on the owner (e.g., "posts").
	Name string

	// TargetType is the referenced document type (e.g., "post").
	TargetType string

	// Field is the linkage field on the owner: an identifier array for
	// ToManyArray, a single identifier for ToOne (e.g., "post_ids").
	Field string

	// Kind is how Field stores the linkage.
	Kind Kind

	// InverseOf optionally names the counterpart relationship declared on
	// TargetType. When empty the relationship is one-directional and no
	// inverse propagation occurs.
	InverseOf string
}

// Registry holds all relationship declarations, keyed by owner type.
// Build it once at wiring time; it is not safe for concurrent mutation.
type Registry struct {
	byType map[string]map[string]Declaration
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[string]map[string]Declaration),
	}
}

// Register adds a declaration to the registry.
// Call once per relationship during application wiring.
func (r *Registry) Register(d Declaration) error {
	if d.OwnerType == "" || d.Name == "" || d.TargetType == "" || d.Field == "" {
		return fmt.Errorf("%w: %s.%s", ErrInvalidDeclaration, d.OwnerType, d.Name)
	}
	if d.Kind != ToManyArray && d.Kind != ToOne {
		return fmt.Errorf("%w: %s.%s has kind %q", ErrInvalidDeclaration, d.OwnerType, d.Name, d.Kind)
	}
	decls, ok := r.byType[d.OwnerType]
	if !ok {
		decls = make(map[string]Declaration)
		r.byType[d.OwnerType] = decls
	}
	if _, exists := decls[d.Name]; exists {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateDeclaration, d.OwnerType, d.Name)
	}
	decls[d.Name] = d
	return nil
}

// Lookup returns the named declaration on a document type.
func (r *Registry) Lookup(docType, name string) (Declaration, bool) {
	d, ok := r.byType[docType][name]
	return d, ok
}

// Declared returns all declarations on a document type, sorted by name.
func (r *Registry) Declared(docType string) []Declaration {
	decls := r.byType[docType]
	if len(decls) == 0 {
		return nil
	}
	out := make([]Declaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Inverse resolves the counterpart declaration named by d.InverseOf on
// d.TargetType. It returns ErrInverseNotDeclared if no such declaration
// exists. Callers must not invoke it when InverseOf is empty.
func (r *Registry) Inverse(d Declaration) (Declaration, error) {
	inv, ok := r.byType[d.TargetType][d.InverseOf]
	if !ok {
		return Declaration{}, fmt.Errorf("%w: %s.%s declares inverse_of %q on %s",
			ErrInverseNotDeclared, d.OwnerType, d.Name, d.InverseOf, d.TargetType)
	}
	return inv, nil
}

// Validate checks every declared inverse: InverseOf must resolve on the
// target type and the resolved declaration must reference the owner type
// back. Run at wiring time so misconfiguration surfaces before the first
// mutation rather than mid-traversal.
func (r *Registry) Validate() error {
	for _, decls := range r.byType {
		for _, d := range decls {
			if d.InverseOf == "" {
				continue
			}
			inv, err := r.Inverse(d)
			if err != nil {
				return err
			}
			if inv.TargetType != d.OwnerType {
				return fmt.Errorf("%w: %s.%s resolves to %s.%s targeting %s, want %s",
					ErrInverseMismatch, d.OwnerType, d.Name, inv.OwnerType, inv.Name, inv.TargetType, d.OwnerType)
			}
		}
	}
	return nil
}
