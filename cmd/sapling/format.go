package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jward/sapling"
)

// outputResult writes result to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

func formatDocumentsText(w io.Writer, docs []CLIDocument) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tNODES\tUPDATED\tID")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			d.Name, d.Kind, d.Nodes, d.UpdatedAt.Local().Format(time.DateTime), d.ID)
	}
	tw.Flush()
}

func formatFunctionsText(w io.Writer, fns []CLIFunction) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tSIGNATURE\tSOURCE")
	for _, f := range fns {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Kind, f.Signature, f.Source)
	}
	tw.Flush()
}

func formatTypesText(w io.Writer, specs []CLITypeSpec) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tMEMBERS")
	for _, ts := range specs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ts.Name, ts.Kind, strings.Join(ts.Members, ", "))
	}
	tw.Flush()
}

func formatLocalsText(w io.Writer, locals []CLILocal) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tFROM")
	for _, l := range locals {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, l.Type, l.Kind)
	}
	tw.Flush()
}

func formatOutlineText(w io.Writer, entries []sapling.OutlineEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s%s\t%s\n", strings.Repeat("  ", e.Depth), e.Label, e.Type)
	}
	tw.Flush()
}

func formatImportText(w io.Writer, res sapling.ImportResult) {
	fmt.Fprintf(w, "Files: %d (%d unchanged)\n", res.Files, res.Skipped)
	for _, section := range []struct {
		title string
		names []string
	}{
		{"Added", res.Added},
		{"Changed", res.Changed},
		{"Removed", res.Removed},
	} {
		if len(section.names) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", section.title)
		for _, n := range section.names {
			fmt.Fprintf(w, "  %s\n", n)
		}
	}
}

func formatStatusText(w io.Writer, st CLIStatus) {
	fmt.Fprintln(w, "Workspace Status")
	fmt.Fprintln(w, "================")
	fmt.Fprintf(w, "Database: %s\n", st.Database)
	fmt.Fprintf(w, "Scripts: %d\n", st.Scripts)
	fmt.Fprintf(w, "Functions: %d user, %d external, %d builtin\n",
		st.UserFunctions, st.ExternalFunctions, st.BuiltinFunctions)
	fmt.Fprintf(w, "Types: %d\n", st.Types)
	if st.LastImport != nil {
		fmt.Fprintf(w, "Last import: %s\n", st.LastImport.Local().Format(time.DateTime))
	}
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case CLIDocument:
		formatDocumentsText(w, []CLIDocument{v})
	case []CLIDocument:
		formatDocumentsText(w, v)
	case []CLIFunction:
		formatFunctionsText(w, v)
	case CLITypeSpec:
		formatTypesText(w, []CLITypeSpec{v})
	case []CLITypeSpec:
		formatTypesText(w, v)
	case []CLILocal:
		formatLocalsText(w, v)
	case []sapling.OutlineEntry:
		formatOutlineText(w, v)
	case []CLIMacro:
		for _, m := range v {
			fmt.Fprintln(w, m.Name)
		}
	case CLIRun:
		state := "unchanged"
		if v.Changed {
			state = "saved"
		}
		fmt.Fprintf(w, "%s: %s\n", v.Document, state)
	case CLIForget:
		fmt.Fprintf(w, "Forgot %s (%d functions)\n", v.Path, len(v.Removed))
	case sapling.ImportResult:
		formatImportText(w, v)
	case CLIStatus:
		formatStatusText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
