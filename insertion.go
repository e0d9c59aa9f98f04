package sapling

import "fmt"

// InsertionKind says what an InsertionPoint's ID refers to.
type InsertionKind int

const (
	// InsertBeginningOfBlock: ID is a Block; code goes before its first statement.
	InsertBeginningOfBlock InsertionKind = iota
	// InsertBefore and InsertAfter: ID is a statement of some Block.
	InsertBefore
	InsertAfter
	// InsertArgument: ID is an Argument whose expression is replaced.
	InsertArgument
	// InsertStructLiteralField: ID is a StructLiteralField whose expression is replaced.
	InsertStructLiteralField
	// InsertListLiteralElement: ID is a ListLiteral, Pos the element index.
	InsertListLiteralElement
	// InsertEditing: ID is a leaf edited in place. No code is inserted.
	InsertEditing
	// InsertReplace: ID is swapped for the inserted code.
	InsertReplace
	// InsertWrap: ID is swapped for code that contains it.
	InsertWrap
)

var insertionKindNames = map[InsertionKind]string{
	InsertBeginningOfBlock:   "beginning_of_block",
	InsertBefore:             "before",
	InsertAfter:              "after",
	InsertArgument:           "argument",
	InsertStructLiteralField: "struct_literal_field",
	InsertListLiteralElement: "list_literal_element",
	InsertEditing:            "editing",
	InsertReplace:            "replace",
	InsertWrap:               "wrap",
}

func (k InsertionKind) String() string {
	if s, ok := insertionKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("InsertionKind(%d)", int(k))
}

// InsertionPoint identifies where an edit applies. The zero value is not a
// valid insertion point; a Session with nothing being edited holds nil.
type InsertionPoint struct {
	Kind InsertionKind
	ID   ID
	Pos  int
}

func BeginningOfBlock(blockID ID) InsertionPoint {
	return InsertionPoint{Kind: InsertBeginningOfBlock, ID: blockID}
}

func Before(id ID) InsertionPoint { return InsertionPoint{Kind: InsertBefore, ID: id} }
func After(id ID) InsertionPoint  { return InsertionPoint{Kind: InsertAfter, ID: id} }

func ArgumentHole(argID ID) InsertionPoint {
	return InsertionPoint{Kind: InsertArgument, ID: argID}
}

func StructFieldHole(fieldID ID) InsertionPoint {
	return InsertionPoint{Kind: InsertStructLiteralField, ID: fieldID}
}

func ListLiteralElement(listID ID, pos int) InsertionPoint {
	return InsertionPoint{Kind: InsertListLiteralElement, ID: listID, Pos: pos}
}

func Editing(id ID) InsertionPoint { return InsertionPoint{Kind: InsertEditing, ID: id} }
func Replace(id ID) InsertionPoint { return InsertionPoint{Kind: InsertReplace, ID: id} }
func Wrap(id ID) InsertionPoint    { return InsertionPoint{Kind: InsertWrap, ID: id} }

func (ip InsertionPoint) String() string {
	if ip.Kind == InsertListLiteralElement {
		return fmt.Sprintf("%s(%s, %d)", ip.Kind, ip.ID, ip.Pos)
	}
	return fmt.Sprintf("%s(%s)", ip.Kind, ip.ID)
}

// NodeID is the node the insertion point is anchored to.
func (ip InsertionPoint) NodeID() ID { return ip.ID }

// NodeIDToSelectWhenMarkingAsEditing is the selection to show while the
// menu for ip is open. Insertion into a block has no existing node to
// highlight.
func (ip InsertionPoint) NodeIDToSelectWhenMarkingAsEditing() ID {
	switch ip.Kind {
	case InsertBeginningOfBlock, InsertBefore, InsertAfter:
		return NilID
	}
	return ip.ID
}

// IsBlockExpression reports whether code inserted at ip becomes a statement
// of a Block.
func (ip InsertionPoint) IsBlockExpression() bool {
	switch ip.Kind {
	case InsertBeginningOfBlock, InsertBefore, InsertAfter:
		return true
	}
	return false
}
