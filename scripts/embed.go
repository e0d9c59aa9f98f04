// Package scripts holds the edit macros shipped with sapling.
package scripts

import "embed"

// FS contains macros/*.risor.
//
//go:embed macros/*.risor
var FS embed.FS
