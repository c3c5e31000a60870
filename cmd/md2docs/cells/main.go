package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/goliatone/go-md2docs/cmd/md2docs/internal/bootstrap"
	"github.com/goliatone/go-md2docs/internal/logging"
	"github.com/goliatone/go-md2docs/internal/publish"
	"github.com/goliatone/go-md2docs/internal/validation"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
)

var (
	moduleBuilder           = bootstrap.BuildModule
	stdout        io.Writer = os.Stdout
)

func main() {
	if err := runCells(os.Args[1:]); err != nil {
		log.Fatalf("md2docs cells: %v", err)
	}
}

// runCells reads a compile result and a document read back after the
// skeleton batch, then prints the cell content batch.
func runCells(args []string) error {
	fs := flag.NewFlagSet("md2docs-cells", flag.ExitOnError)
	resultPath := fs.String("result", "", "JSON output of md2docs-compile")
	documentPath := fs.String("document", "", "Document JSON read back after the skeleton batch")
	startIndex := fs.Int("start-index", 0, "Ignore tables that start before this index")
	pretty := fs.Bool("pretty", false, "Indent the JSON output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *resultPath == "" || *documentPath == "" {
		return fmt.Errorf("--result and --document are required")
	}

	rawResult, err := os.ReadFile(*resultPath)
	if err != nil {
		return fmt.Errorf("read result: %w", err)
	}
	result, err := validation.DecodeResult(rawResult)
	if err != nil {
		return fmt.Errorf("decode result: %w", err)
	}

	rawDoc, err := os.ReadFile(*documentPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc, err := validation.DecodeDocument(rawDoc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if *startIndex > 0 {
		doc = publish.ScopeFrom(doc, *startIndex)
	}

	module, err := moduleBuilder(bootstrap.Options{LogLevel: "warn"})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.Module == nil {
		return fmt.Errorf("md2docs module not configured")
	}

	indices := module.Module.FindTableCellIndices(doc)
	if len(indices) != len(result.Tables) {
		logging.OrNoOp(module.Logger).Warn("cells.table_count_mismatch",
			"compiled", len(result.Tables),
			"located", len(indices),
		)
	}

	requests := module.Module.GenerateTableCellRequests(result.Tables, indices)
	if requests == nil {
		requests = []docmodel.Request{}
	}
	return bootstrap.WriteJSON(stdout, requests, *pretty)
}
