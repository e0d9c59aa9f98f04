package sapling

import (
	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/lang"
)

// Public type aliases for the internal AST and catalog types used across the
// editing API. These are Go type aliases (=), identical to the internal types
// at compile time.

type ID = lang.ID
type CodeNode = lang.CodeNode
type Type = lang.Type
type TypeSpec = lang.TypeSpec
type ArgumentDefinition = lang.ArgumentDefinition

type Catalog = catalog.Catalog
type Registry = catalog.Registry
type Function = catalog.Function

// NilID means "no node".
var NilID = lang.NilID
