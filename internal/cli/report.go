package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oxhq/fshc/internal/core"
	"github.com/oxhq/fshc/internal/diagnostic"
	"github.com/oxhq/fshc/internal/model"
)

// summary is the --json compile report: diagnostics plus the total
// artifact count and the error count, so a caller scripting against fshc doesn't have to
// re-derive totals from the written output directory.
type summary struct {
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics"`
	Artifacts   int                     `json:"artifacts"`
	Errors      int                     `json:"errors"`
}

func report(diags *diagnostic.Collector, pkg *model.Package, cfg *model.Config) {
	if cfg.JSONOutput {
		s := summary{Diagnostics: diags.Sorted(), Artifacts: pkg.Len(), Errors: diags.ErrorCount()}
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshaling summary: %v\n", err)
			return
		}
		fmt.Println(string(b))
		return
	}

	for _, d := range diags.Sorted() {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if cfg.Verbose || len(diags.Sorted()) == 0 {
		fmt.Printf("compiled %d artifact(s), %d error(s)\n", pkg.Len(), diags.ErrorCount())
	}
}

// reportFatal reports a process-level error (one that aborts before any
// diagnostic stream exists: scan failure, unreadable file, unwritable
// output) and returns the exit code for it.
func reportFatal(err error, cfg *model.Config) int {
	if cfg.JSONOutput {
		if ce, ok := err.(core.CLIError); ok {
			fmt.Println(ce.JSON())
		} else {
			fmt.Println(core.CLIError{Code: core.ErrUnknown, Message: err.Error()}.JSON())
		}
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return 1
}
