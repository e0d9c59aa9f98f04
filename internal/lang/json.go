package lang

import (
	"encoding/json"
	"fmt"
)

// wireNode is the serialized form of a CodeNode: the variant tag, its
// scalar attributes, and its children in Children order.
type wireNode struct {
	Kind     NodeKind            `json:"kind"`
	ID       ID                  `json:"id"`
	Name     string              `json:"name,omitempty"`
	Text     string              `json:"text,omitempty"`
	Number   int64               `json:"number,omitempty"`
	Ref      ID                  `json:"ref,omitzero"`
	Type     *Type               `json:"type,omitempty"`
	Arg      *ArgumentDefinition `json:"arg,omitempty"`
	Variants []ID                `json:"variants,omitempty"`
	HasElse  bool                `json:"has_else,omitempty"`
	Children []wireNode          `json:"children,omitempty"`
}

// MarshalNode encodes a tree as JSON.
func MarshalNode(n CodeNode) ([]byte, error) {
	return json.Marshal(toWire(n))
}

// UnmarshalNode decodes a tree produced by MarshalNode.
func UnmarshalNode(data []byte) (CodeNode, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	return fromWire(w)
}

func toWire(n CodeNode) wireNode {
	w := wireNode{Kind: n.Kind(), ID: n.ID()}
	switch v := n.(type) {
	case *FunctionReference:
		w.Ref = v.FunctionID
	case *Argument:
		w.Ref = v.ArgumentDefinitionID
	case *Assignment:
		w.Name = v.Name
	case *Reassignment:
		w.Ref = v.AssignmentID
	case *ReassignListIndex:
		w.Ref = v.AssignmentID
	case *VariableReference:
		w.Ref = v.AssignmentID
	case *Placeholder:
		w.Text = v.Description
		t := v.Type
		w.Type = &t
	case *StringLiteral:
		w.Text = v.Value
	case *NumberLiteral:
		w.Number = v.Value
	case *StructLiteral:
		w.Ref = v.StructID
	case *StructLiteralField:
		w.Ref = v.StructFieldID
	case *ListLiteral:
		t := v.ElementType
		w.Type = &t
	case *Conditional:
		w.HasElse = v.ElseBranch != nil
	case *Match:
		for _, b := range v.Branches {
			w.Variants = append(w.Variants, b.VariantID)
		}
	case *AnonymousFunction:
		arg := v.TakesArg
		w.Arg = &arg
		t := v.Returns
		w.Type = &t
	}
	for _, c := range n.Children() {
		w.Children = append(w.Children, toWire(c))
	}
	return w
}

func fromWire(w wireNode) (CodeNode, error) {
	children := make([]CodeNode, len(w.Children))
	for i, cw := range w.Children {
		c, err := fromWire(cw)
		if err != nil {
			return nil, err
		}
		children[i] = c
	}

	shell, err := shellFor(w, len(children))
	if err != nil {
		return nil, err
	}
	n, err := shell.withChildren(children)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", w.Kind, err)
	}
	return n, nil
}

// shellFor builds a childless node of w's variant carrying its scalar
// attributes. Variants with a fixed child layout get sized slots so that
// withChildren can check the decoded children against them.
func shellFor(w wireNode, numChildren int) (CodeNode, error) {
	typ := func() Type {
		if w.Type == nil {
			return NullType()
		}
		return *w.Type
	}

	switch w.Kind {
	case KindFunctionCall:
		if numChildren < 1 {
			return nil, fmt.Errorf("decode %s: missing function reference", w.Kind)
		}
		return &FunctionCall{NodeID: w.ID, Args: make([]*Argument, numChildren-1)}, nil
	case KindFunctionReference:
		return &FunctionReference{NodeID: w.ID, FunctionID: w.Ref}, nil
	case KindArgument:
		return &Argument{NodeID: w.ID, ArgumentDefinitionID: w.Ref}, nil
	case KindAssignment:
		return &Assignment{NodeID: w.ID, Name: w.Name}, nil
	case KindReassignment:
		return &Reassignment{NodeID: w.ID, AssignmentID: w.Ref}, nil
	case KindReassignListIndex:
		return &ReassignListIndex{NodeID: w.ID, AssignmentID: w.Ref}, nil
	case KindBlock:
		return &Block{NodeID: w.ID}, nil
	case KindVariableReference:
		return &VariableReference{NodeID: w.ID, AssignmentID: w.Ref}, nil
	case KindPlaceholder:
		return &Placeholder{NodeID: w.ID, Description: w.Text, Type: typ()}, nil
	case KindStringLiteral:
		return &StringLiteral{NodeID: w.ID, Value: w.Text}, nil
	case KindNumberLiteral:
		return &NumberLiteral{NodeID: w.ID, Value: w.Number}, nil
	case KindNullLiteral:
		return &NullLiteral{NodeID: w.ID}, nil
	case KindStructLiteral:
		return &StructLiteral{NodeID: w.ID, StructID: w.Ref, Fields: make([]*StructLiteralField, numChildren)}, nil
	case KindStructLiteralField:
		return &StructLiteralField{NodeID: w.ID, StructFieldID: w.Ref}, nil
	case KindListLiteral:
		return &ListLiteral{NodeID: w.ID, ElementType: typ()}, nil
	case KindListIndex:
		return &ListIndex{NodeID: w.ID}, nil
	case KindConditional:
		c := &Conditional{NodeID: w.ID}
		if w.HasElse {
			c.ElseBranch = &Block{}
		}
		return c, nil
	case KindMatch:
		branches := make([]MatchBranch, len(w.Variants))
		for i, v := range w.Variants {
			branches[i] = MatchBranch{VariantID: v}
		}
		return &Match{NodeID: w.ID, Branches: branches}, nil
	case KindAnonymousFunction:
		af := &AnonymousFunction{NodeID: w.ID, Returns: typ()}
		if w.Arg != nil {
			af.TakesArg = *w.Arg
		}
		return af, nil
	}
	return nil, fmt.Errorf("decode node: unknown kind %q", w.Kind)
}
