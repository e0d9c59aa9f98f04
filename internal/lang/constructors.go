package lang

import "github.com/google/uuid"

func newSHA1(ns ID, data []byte) ID {
	return uuid.NewSHA1(ns, data)
}

// NewBlock returns a Block owning stmts.
func NewBlock(stmts ...CodeNode) *Block {
	return &Block{NodeID: NewID(), Statements: stmts}
}

// NewScript returns the body of a fresh script: a block holding a single
// end-of-script placeholder.
func NewScript() *Block {
	return NewBlock(NewPlaceholder("End of script", NullType()))
}

func NewPlaceholder(description string, typ Type) *Placeholder {
	return &Placeholder{NodeID: NewID(), Description: description, Type: typ}
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{NodeID: NewID(), Value: value}
}

func NewNumberLiteral(value int64) *NumberLiteral {
	return &NumberLiteral{NodeID: NewID(), Value: value}
}

func NewNullLiteral() *NullLiteral {
	return &NullLiteral{NodeID: NewID()}
}

func NewAssignment(name string, expr CodeNode) *Assignment {
	return &Assignment{NodeID: NewID(), Name: name, Expr: expr}
}

func NewReassignment(assignmentID ID, expr CodeNode) *Reassignment {
	return &Reassignment{NodeID: NewID(), AssignmentID: assignmentID, Expr: expr}
}

func NewVariableReference(assignmentID ID) *VariableReference {
	return &VariableReference{NodeID: NewID(), AssignmentID: assignmentID}
}

func NewArgument(argDefID ID, expr CodeNode) *Argument {
	return &Argument{NodeID: NewID(), ArgumentDefinitionID: argDefID, Expr: expr}
}

// NewFunctionCall returns a call of functionID with the given arguments.
func NewFunctionCall(functionID ID, args ...*Argument) *FunctionCall {
	return &FunctionCall{
		NodeID:    NewID(),
		Reference: &FunctionReference{NodeID: NewID(), FunctionID: functionID},
		Args:      args,
	}
}

// NewFunctionCallWithPlaceholderArgs returns a call whose every argument
// holds a placeholder named and typed after its definition.
func NewFunctionCallWithPlaceholderArgs(functionID ID, defs []ArgumentDefinition) *FunctionCall {
	args := make([]*Argument, len(defs))
	for i, def := range defs {
		args[i] = NewArgument(def.ID, NewPlaceholder(def.Name, def.Type.Clone()))
	}
	return NewFunctionCall(functionID, args...)
}

// NewStructLiteralWithPlaceholders returns a literal of spec whose fields
// hold typed placeholders.
func NewStructLiteralWithPlaceholders(spec *TypeSpec) *StructLiteral {
	fields := make([]*StructLiteralField, len(spec.Fields))
	for i, f := range spec.Fields {
		fields[i] = &StructLiteralField{
			NodeID:        NewID(),
			StructFieldID: f.ID,
			Expr:          NewPlaceholder(f.Name, f.Type.Clone()),
		}
	}
	return &StructLiteral{NodeID: NewID(), StructID: spec.ID, Fields: fields}
}

func NewListLiteral(elemType Type, elements ...CodeNode) *ListLiteral {
	return &ListLiteral{NodeID: NewID(), ElementType: elemType, Elements: elements}
}

func NewListIndex(list, index CodeNode) *ListIndex {
	return &ListIndex{NodeID: NewID(), List: list, Index: index}
}

// NewConditional returns an if-statement on condition whose true branch
// holds a placeholder.
func NewConditional(condition CodeNode) *Conditional {
	return &Conditional{
		NodeID:     NewID(),
		Condition:  condition,
		TrueBranch: NewBlock(NewPlaceholder("Then", NullType())),
	}
}

// NewMatch returns a match on matchee with one placeholder branch per variant.
func NewMatch(matchee CodeNode, variants []EnumVariant) *Match {
	branches := make([]MatchBranch, len(variants))
	for i, v := range variants {
		branches[i] = MatchBranch{
			VariantID: v.ID,
			Block:     NewBlock(NewPlaceholder(v.Name, NullType())),
		}
	}
	return &Match{NodeID: NewID(), Matchee: matchee, Branches: branches}
}

// NewAnonymousFunction returns a function of arg whose body is a placeholder
// of the return type.
func NewAnonymousFunction(arg ArgumentDefinition, returns Type) *AnonymousFunction {
	return &AnonymousFunction{
		NodeID:   NewID(),
		TakesArg: arg,
		Returns:  returns,
		Block:    NewBlock(NewPlaceholder("Returns", returns.Clone())),
	}
}
