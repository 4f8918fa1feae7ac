package relation

import "errors"

var (
	// ErrInvalidDeclaration is returned when a declaration is missing a
	// required field or names an unknown kind.
	ErrInvalidDeclaration = errors.New("espalier: invalid relationship declaration")

	// ErrDuplicateDeclaration is returned when a relationship name is
	// registered twice for the same owner type.
	ErrDuplicateDeclaration = errors.New("espalier: relationship already declared")

	// ErrUnknownRelationship is returned when a relationship name is not
	// declared on the document's type.
	ErrUnknownRelationship = errors.New("espalier: relationship not declared")

	// ErrNotArrayRelationship is returned when an association is requested
	// for a declaration that does not store an identifier array.
	ErrNotArrayRelationship = errors.New("espalier: relationship does not store an identifier array")

	// ErrInverseNotDeclared is returned when inverse_of names a
	// relationship that does not exist on the target type.
	ErrInverseNotDeclared = errors.New("espalier: inverse relationship not declared on target type")

	// ErrInverseMismatch is returned when the resolved inverse declaration
	// does not reference the owner type back.
	ErrInverseMismatch = errors.New("espalier: inverse relationship does not reference owner type")
)
