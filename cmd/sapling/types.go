package main

import "time"

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIDocument is a JSON-friendly document summary.
type CLIDocument struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Nodes     int       `json:"nodes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CLIFunction is a JSON-friendly catalog function.
type CLIFunction struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Signature string `json:"signature"`
	Source    string `json:"source,omitempty"`
}

// CLITypeSpec is a JSON-friendly struct or enum declaration. Members are
// "name Type" for fields and variants that carry a value, bare names
// otherwise.
type CLITypeSpec struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Members []string `json:"members,omitempty"`
}

// CLILocal is a variable visible at a node.
type CLILocal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Kind string `json:"kind"`
}

// CLIRun reports a finished macro.
type CLIRun struct {
	Document string `json:"document"`
	Changed  bool   `json:"changed"`
	Selected string `json:"selected,omitempty"`
}

// CLIMacro is an available macro.
type CLIMacro struct {
	Name string `json:"name"`
}

// CLIForget lists the functions dropped with a source file.
type CLIForget struct {
	Path    string   `json:"path"`
	Removed []string `json:"removed"`
}

// CLIStatus summarizes a workspace.
type CLIStatus struct {
	Database          string     `json:"database"`
	Scripts           int        `json:"scripts"`
	UserFunctions     int        `json:"user_functions"`
	ExternalFunctions int        `json:"external_functions"`
	BuiltinFunctions  int        `json:"builtin_functions"`
	Types             int        `json:"types"`
	LastImport        *time.Time `json:"last_import,omitempty"`
}
