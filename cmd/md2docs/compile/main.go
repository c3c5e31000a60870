package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/goliatone/go-md2docs/cmd/md2docs/internal/bootstrap"
	publishcmd "github.com/goliatone/go-md2docs/internal/commands/publish"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
)

var (
	moduleBuilder           = bootstrap.BuildModule
	stdout        io.Writer = os.Stdout
)

func main() {
	if err := runCompile(os.Args[1:]); err != nil {
		log.Fatalf("md2docs compile: %v", err)
	}
}

func runCompile(args []string) error {
	fs := flag.NewFlagSet("md2docs-compile", flag.ExitOnError)
	filePath := fs.String("file", "", "Markdown file to compile (- reads stdin)")
	startIndex := fs.Int("start-index", 0, "Index where the first insert lands (defaults to 1)")
	tableOverhead := fs.Int("table-overhead", 3, "Fixed index advance added after every table")
	noEmoji := fs.Bool("no-emoji", false, "Leave :shortcode: sequences untouched")
	extensions := fs.String("extensions", "", "Comma separated goldmark extensions (defaults to table,strikethrough)")
	pretty := fs.Bool("pretty", false, "Indent the JSON output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *startIndex < 0 {
		return fmt.Errorf("start-index must not be negative, got %d", *startIndex)
	}

	src, err := bootstrap.ReadSource(*filePath)
	if err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		StartIndex:    *startIndex,
		TableOverhead: tableOverhead,
		DisableEmoji:  *noEmoji,
		Extensions:    bootstrap.SplitList(*extensions),
		LogLevel:      "warn",
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.Compile == nil {
		return fmt.Errorf("compile handler not configured")
	}

	start := *startIndex
	if start == 0 && module.Module != nil {
		start = module.Module.Container().Config().Compiler.StartIndex
	}

	var result docmodel.Result
	cmd := publishcmd.CompileMarkdownCommand{
		Markdown:   src.Body,
		StartIndex: start,
		OnResult:   func(r docmodel.Result) { result = r },
	}
	if err := module.Compile.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute compile command: %w", err)
	}

	if result.Requests == nil {
		result.Requests = []docmodel.Request{}
	}
	if result.Tables == nil {
		result.Tables = []docmodel.TableDescriptor{}
	}
	return bootstrap.WriteJSON(stdout, result, *pretty)
}
