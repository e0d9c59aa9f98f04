package sapling

import "errors"

// Invariant violations. These mean the engine itself built an inconsistent
// request; the tree is left untouched.
var (
	ErrInvariantViolation    = errors.New("invariant violation")
	ErrNodeNotFound          = errors.New("node not found")
	ErrInvalidInsertionPoint = errors.New("insertion point does not fit the tree")
)

// Degradable gaps between the tree and the catalog.
var (
	ErrFunctionNotFound    = errors.New("function not found")
	ErrDeclarationNotFound = errors.New("declaration not found")
	ErrStructNotFound      = errors.New("struct not found")
	ErrTypeNotFound        = errors.New("type not found")
)

// Editing-state errors.
var (
	ErrUnsupportedInsertion = errors.New("insertion point does not accept inserted code")
	ErrNotEditing           = errors.New("not editing")
	ErrNothingSelected      = errors.New("nothing selected")
	ErrDocumentNotFound     = errors.New("document not found")
)
