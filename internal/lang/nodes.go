package lang

import (
	"fmt"
)

// NodeKind names a CodeNode variant. It is also the tag used by the JSON codec.
type NodeKind string

const (
	KindFunctionCall       NodeKind = "function_call"
	KindFunctionReference  NodeKind = "function_reference"
	KindArgument           NodeKind = "argument"
	KindAssignment         NodeKind = "assignment"
	KindReassignment       NodeKind = "reassignment"
	KindReassignListIndex  NodeKind = "reassign_list_index"
	KindBlock              NodeKind = "block"
	KindVariableReference  NodeKind = "variable_reference"
	KindPlaceholder        NodeKind = "placeholder"
	KindStringLiteral      NodeKind = "string_literal"
	KindNumberLiteral      NodeKind = "number_literal"
	KindNullLiteral        NodeKind = "null_literal"
	KindStructLiteral      NodeKind = "struct_literal"
	KindStructLiteralField NodeKind = "struct_literal_field"
	KindListLiteral        NodeKind = "list_literal"
	KindListIndex          NodeKind = "list_index"
	KindConditional        NodeKind = "conditional"
	KindMatch              NodeKind = "match"
	KindAnonymousFunction  NodeKind = "anonymous_function"
)

// CodeNode is one node of the edited tree. The set of implementations is
// closed: every variant lives in this package.
//
// Children is the single structural decomposition used for traversal,
// parent lookup, cloning and replacement.
type CodeNode interface {
	ID() ID
	Kind() NodeKind
	Children() []CodeNode

	// withChildren returns a shallow copy of the node whose children are
	// replaced, in Children order. The receiver is never modified.
	withChildren(children []CodeNode) (CodeNode, error)
}

func childCountError(n CodeNode, want, got int) error {
	return fmt.Errorf("%s %s: want %d children, got %d", n.Kind(), n.ID(), want, got)
}

func childTypeError(n CodeNode, slot string, got CodeNode) error {
	return fmt.Errorf("%s %s: %s slot cannot hold %s", n.Kind(), n.ID(), slot, got.Kind())
}

// FunctionCall invokes the function named by Reference with Args.
type FunctionCall struct {
	NodeID    ID
	Reference *FunctionReference
	Args      []*Argument
}

func (n *FunctionCall) ID() ID         { return n.NodeID }
func (n *FunctionCall) Kind() NodeKind { return KindFunctionCall }

func (n *FunctionCall) Children() []CodeNode {
	out := make([]CodeNode, 0, len(n.Args)+1)
	out = append(out, n.Reference)
	for _, a := range n.Args {
		out = append(out, a)
	}
	return out
}

func (n *FunctionCall) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != len(n.Args)+1 {
		return nil, childCountError(n, len(n.Args)+1, len(children))
	}
	ref, ok := children[0].(*FunctionReference)
	if !ok {
		return nil, childTypeError(n, "reference", children[0])
	}
	var args []*Argument
	if len(n.Args) > 0 {
		args = make([]*Argument, len(n.Args))
	}
	for i, c := range children[1:] {
		arg, ok := c.(*Argument)
		if !ok {
			return nil, childTypeError(n, "argument", c)
		}
		args[i] = arg
	}
	return &FunctionCall{NodeID: n.NodeID, Reference: ref, Args: args}, nil
}

// FunctionReference names the function a call invokes.
type FunctionReference struct {
	NodeID     ID
	FunctionID ID
}

func (n *FunctionReference) ID() ID               { return n.NodeID }
func (n *FunctionReference) Kind() NodeKind       { return KindFunctionReference }
func (n *FunctionReference) Children() []CodeNode { return nil }

func (n *FunctionReference) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 0 {
		return nil, childCountError(n, 0, len(children))
	}
	cp := *n
	return &cp, nil
}

// Argument is a hole of a function call, tagged with the definition it fills.
type Argument struct {
	NodeID               ID
	ArgumentDefinitionID ID
	Expr                 CodeNode
}

func (n *Argument) ID() ID               { return n.NodeID }
func (n *Argument) Kind() NodeKind       { return KindArgument }
func (n *Argument) Children() []CodeNode { return []CodeNode{n.Expr} }

func (n *Argument) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 1 {
		return nil, childCountError(n, 1, len(children))
	}
	return &Argument{NodeID: n.NodeID, ArgumentDefinitionID: n.ArgumentDefinitionID, Expr: children[0]}, nil
}

// Assignment binds Name to the value of Expr for later statements.
type Assignment struct {
	NodeID ID
	Name   string
	Expr   CodeNode
}

func (n *Assignment) ID() ID               { return n.NodeID }
func (n *Assignment) Kind() NodeKind       { return KindAssignment }
func (n *Assignment) Children() []CodeNode { return []CodeNode{n.Expr} }

func (n *Assignment) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 1 {
		return nil, childCountError(n, 1, len(children))
	}
	return &Assignment{NodeID: n.NodeID, Name: n.Name, Expr: children[0]}, nil
}

// Reassignment gives an existing Assignment a new value.
type Reassignment struct {
	NodeID       ID
	AssignmentID ID
	Expr         CodeNode
}

func (n *Reassignment) ID() ID               { return n.NodeID }
func (n *Reassignment) Kind() NodeKind       { return KindReassignment }
func (n *Reassignment) Children() []CodeNode { return []CodeNode{n.Expr} }

func (n *Reassignment) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 1 {
		return nil, childCountError(n, 1, len(children))
	}
	return &Reassignment{NodeID: n.NodeID, AssignmentID: n.AssignmentID, Expr: children[0]}, nil
}

// ReassignListIndex sets one element of a list-valued Assignment.
type ReassignListIndex struct {
	NodeID       ID
	AssignmentID ID
	Index        CodeNode
	SetTo        CodeNode
}

func (n *ReassignListIndex) ID() ID               { return n.NodeID }
func (n *ReassignListIndex) Kind() NodeKind       { return KindReassignListIndex }
func (n *ReassignListIndex) Children() []CodeNode { return []CodeNode{n.Index, n.SetTo} }

func (n *ReassignListIndex) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 2 {
		return nil, childCountError(n, 2, len(children))
	}
	return &ReassignListIndex{NodeID: n.NodeID, AssignmentID: n.AssignmentID, Index: children[0], SetTo: children[1]}, nil
}

// Block is an ordered statement list and the only scope boundary.
type Block struct {
	NodeID     ID
	Statements []CodeNode
}

func (n *Block) ID() ID         { return n.NodeID }
func (n *Block) Kind() NodeKind { return KindBlock }

func (n *Block) Children() []CodeNode {
	return append([]CodeNode(nil), n.Statements...)
}

func (n *Block) withChildren(children []CodeNode) (CodeNode, error) {
	return &Block{NodeID: n.NodeID, Statements: append([]CodeNode(nil), children...)}, nil
}

// Position returns the index of the statement with the given id.
func (n *Block) Position(id ID) (int, bool) {
	return positionOf(n.Statements, id)
}

// VariableReference refers to an assignment, argument definition,
// anonymous function argument or match binding by id.
type VariableReference struct {
	NodeID       ID
	AssignmentID ID
}

func (n *VariableReference) ID() ID               { return n.NodeID }
func (n *VariableReference) Kind() NodeKind       { return KindVariableReference }
func (n *VariableReference) Children() []CodeNode { return nil }

func (n *VariableReference) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 0 {
		return nil, childCountError(n, 0, len(children))
	}
	cp := *n
	return &cp, nil
}

// Placeholder is a typed hole awaiting a value.
type Placeholder struct {
	NodeID      ID
	Description string
	Type        Type
}

func (n *Placeholder) ID() ID               { return n.NodeID }
func (n *Placeholder) Kind() NodeKind       { return KindPlaceholder }
func (n *Placeholder) Children() []CodeNode { return nil }

func (n *Placeholder) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 0 {
		return nil, childCountError(n, 0, len(children))
	}
	return &Placeholder{NodeID: n.NodeID, Description: n.Description, Type: n.Type.Clone()}, nil
}

type StringLiteral struct {
	NodeID ID
	Value  string
}

func (n *StringLiteral) ID() ID               { return n.NodeID }
func (n *StringLiteral) Kind() NodeKind       { return KindStringLiteral }
func (n *StringLiteral) Children() []CodeNode { return nil }

func (n *StringLiteral) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 0 {
		return nil, childCountError(n, 0, len(children))
	}
	cp := *n
	return &cp, nil
}

type NumberLiteral struct {
	NodeID ID
	Value  int64
}

func (n *NumberLiteral) ID() ID               { return n.NodeID }
func (n *NumberLiteral) Kind() NodeKind       { return KindNumberLiteral }
func (n *NumberLiteral) Children() []CodeNode { return nil }

func (n *NumberLiteral) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 0 {
		return nil, childCountError(n, 0, len(children))
	}
	cp := *n
	return &cp, nil
}

type NullLiteral struct {
	NodeID ID
}

func (n *NullLiteral) ID() ID               { return n.NodeID }
func (n *NullLiteral) Kind() NodeKind       { return KindNullLiteral }
func (n *NullLiteral) Children() []CodeNode { return nil }

func (n *NullLiteral) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 0 {
		return nil, childCountError(n, 0, len(children))
	}
	cp := *n
	return &cp, nil
}

// StructLiteral builds a value of the struct TypeSpec StructID.
type StructLiteral struct {
	NodeID   ID
	StructID ID
	Fields   []*StructLiteralField
}

func (n *StructLiteral) ID() ID         { return n.NodeID }
func (n *StructLiteral) Kind() NodeKind { return KindStructLiteral }

func (n *StructLiteral) Children() []CodeNode {
	out := make([]CodeNode, len(n.Fields))
	for i, f := range n.Fields {
		out[i] = f
	}
	return out
}

func (n *StructLiteral) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != len(n.Fields) {
		return nil, childCountError(n, len(n.Fields), len(children))
	}
	var fields []*StructLiteralField
	if len(children) > 0 {
		fields = make([]*StructLiteralField, len(children))
	}
	for i, c := range children {
		f, ok := c.(*StructLiteralField)
		if !ok {
			return nil, childTypeError(n, "field", c)
		}
		fields[i] = f
	}
	return &StructLiteral{NodeID: n.NodeID, StructID: n.StructID, Fields: fields}, nil
}

// StructLiteralField is a hole of a struct literal.
type StructLiteralField struct {
	NodeID        ID
	StructFieldID ID
	Expr          CodeNode
}

func (n *StructLiteralField) ID() ID               { return n.NodeID }
func (n *StructLiteralField) Kind() NodeKind       { return KindStructLiteralField }
func (n *StructLiteralField) Children() []CodeNode { return []CodeNode{n.Expr} }

func (n *StructLiteralField) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 1 {
		return nil, childCountError(n, 1, len(children))
	}
	return &StructLiteralField{NodeID: n.NodeID, StructFieldID: n.StructFieldID, Expr: children[0]}, nil
}

type ListLiteral struct {
	NodeID      ID
	ElementType Type
	Elements    []CodeNode
}

func (n *ListLiteral) ID() ID         { return n.NodeID }
func (n *ListLiteral) Kind() NodeKind { return KindListLiteral }

func (n *ListLiteral) Children() []CodeNode {
	return append([]CodeNode(nil), n.Elements...)
}

func (n *ListLiteral) withChildren(children []CodeNode) (CodeNode, error) {
	return &ListLiteral{NodeID: n.NodeID, ElementType: n.ElementType.Clone(), Elements: append([]CodeNode(nil), children...)}, nil
}

// Position returns the index of the element with the given id.
func (n *ListLiteral) Position(id ID) (int, bool) {
	return positionOf(n.Elements, id)
}

type ListIndex struct {
	NodeID ID
	List   CodeNode
	Index  CodeNode
}

func (n *ListIndex) ID() ID               { return n.NodeID }
func (n *ListIndex) Kind() NodeKind       { return KindListIndex }
func (n *ListIndex) Children() []CodeNode { return []CodeNode{n.List, n.Index} }

func (n *ListIndex) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 2 {
		return nil, childCountError(n, 2, len(children))
	}
	return &ListIndex{NodeID: n.NodeID, List: children[0], Index: children[1]}, nil
}

// Conditional evaluates TrueBranch when Condition holds. ElseBranch may be nil.
type Conditional struct {
	NodeID     ID
	Condition  CodeNode
	TrueBranch *Block
	ElseBranch *Block
}

func (n *Conditional) ID() ID         { return n.NodeID }
func (n *Conditional) Kind() NodeKind { return KindConditional }

func (n *Conditional) Children() []CodeNode {
	out := []CodeNode{n.Condition, n.TrueBranch}
	if n.ElseBranch != nil {
		out = append(out, n.ElseBranch)
	}
	return out
}

func (n *Conditional) withChildren(children []CodeNode) (CodeNode, error) {
	want := 2
	if n.ElseBranch != nil {
		want = 3
	}
	if len(children) != want {
		return nil, childCountError(n, want, len(children))
	}
	tb, ok := children[1].(*Block)
	if !ok {
		return nil, childTypeError(n, "true branch", children[1])
	}
	out := &Conditional{NodeID: n.NodeID, Condition: children[0], TrueBranch: tb}
	if want == 3 {
		eb, ok := children[2].(*Block)
		if !ok {
			return nil, childTypeError(n, "else branch", children[2])
		}
		out.ElseBranch = eb
	}
	return out, nil
}

// MatchBranch is the block run when the matchee holds VariantID.
type MatchBranch struct {
	VariantID ID
	Block     *Block
}

// Match dispatches on the variant of an enum-typed Matchee. Branches keep
// the declaration order of the enum's variants.
type Match struct {
	NodeID   ID
	Matchee  CodeNode
	Branches []MatchBranch
}

func (n *Match) ID() ID         { return n.NodeID }
func (n *Match) Kind() NodeKind { return KindMatch }

func (n *Match) Children() []CodeNode {
	out := make([]CodeNode, 0, len(n.Branches)+1)
	out = append(out, n.Matchee)
	for _, b := range n.Branches {
		out = append(out, b.Block)
	}
	return out
}

func (n *Match) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != len(n.Branches)+1 {
		return nil, childCountError(n, len(n.Branches)+1, len(children))
	}
	branches := make([]MatchBranch, len(n.Branches))
	for i, c := range children[1:] {
		b, ok := c.(*Block)
		if !ok {
			return nil, childTypeError(n, "branch", c)
		}
		branches[i] = MatchBranch{VariantID: n.Branches[i].VariantID, Block: b}
	}
	return &Match{NodeID: n.NodeID, Matchee: children[0], Branches: branches}, nil
}

// BranchFor returns the branch whose block has the given id.
func (n *Match) BranchFor(blockID ID) (MatchBranch, bool) {
	for _, b := range n.Branches {
		if b.Block.NodeID == blockID {
			return b, true
		}
	}
	return MatchBranch{}, false
}

// AnonymousFunction takes one implicit argument and evaluates Block.
type AnonymousFunction struct {
	NodeID   ID
	TakesArg ArgumentDefinition
	Returns  Type
	Block    *Block
}

func (n *AnonymousFunction) ID() ID               { return n.NodeID }
func (n *AnonymousFunction) Kind() NodeKind       { return KindAnonymousFunction }
func (n *AnonymousFunction) Children() []CodeNode { return []CodeNode{n.Block} }

func (n *AnonymousFunction) withChildren(children []CodeNode) (CodeNode, error) {
	if len(children) != 1 {
		return nil, childCountError(n, 1, len(children))
	}
	b, ok := children[0].(*Block)
	if !ok {
		return nil, childTypeError(n, "block", children[0])
	}
	return &AnonymousFunction{NodeID: n.NodeID, TakesArg: n.TakesArg, Returns: n.Returns.Clone(), Block: b}, nil
}

func positionOf(nodes []CodeNode, id ID) (int, bool) {
	for i, c := range nodes {
		if c.ID() == id {
			return i, true
		}
	}
	return -1, false
}
