package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/cron"
	"github.com/goliatone/go-md2docs/cmd/md2docs/internal/bootstrap"
	publishcmd "github.com/goliatone/go-md2docs/internal/commands/publish"
	"github.com/goliatone/go-md2docs/internal/logging"
	"github.com/goliatone/go-md2docs/internal/publish"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
)

// scheduler is the part of the go-command cron scheduler the publish loop uses.
type scheduler interface {
	AddHandler(cfg command.HandlerConfig, handler any) (cron.Subscription, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var (
	moduleBuilder           = bootstrap.BuildModule
	stdout        io.Writer = os.Stdout

	newScheduler = func(logger interfaces.Logger) scheduler {
		return cron.NewScheduler(
			cron.WithLogger(logger),
			cron.WithErrorHandler(func(err error) {
				logger.Error("publish.schedule.run_failed", "error", err)
			}),
		)
	}
	shutdownContext = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
)

func main() {
	if err := runPublish(os.Args[1:]); err != nil {
		log.Fatalf("md2docs publish: %v", err)
	}
}

// sources describes where publish messages come from: one file or a
// directory of files that name their target in front matter.
type sources struct {
	file       string
	dir        string
	pattern    string
	recursive  bool
	documentID string
	startIndex int
	appendMode bool
	force      bool
}

// messages reads the sources and builds one publish message per document.
// In directory mode files without a document_id are skipped with a warning.
func (s sources) messages(ctx context.Context, logger interfaces.Logger) ([]publishcmd.PublishDocumentCommand, error) {
	var loaded []*bootstrap.Source
	if s.dir != "" {
		found, err := bootstrap.LoadSources(ctx, s.dir, s.pattern, s.recursive)
		if err != nil {
			return nil, err
		}
		loaded = found
	} else {
		src, err := bootstrap.ReadSource(s.file)
		if err != nil {
			return nil, err
		}
		if id := strings.TrimSpace(s.documentID); id != "" {
			src.FrontMatter.DocumentID = id
		}
		if strings.TrimSpace(src.FrontMatter.DocumentID) == "" {
			return nil, fmt.Errorf("document id is required (flag or front matter document_id)")
		}
		loaded = append(loaded, src)
	}

	msgs := make([]publishcmd.PublishDocumentCommand, 0, len(loaded))
	for _, src := range loaded {
		docID := strings.TrimSpace(src.FrontMatter.DocumentID)
		if docID == "" {
			logging.OrNoOp(logger).Warn("publish.source.skipped", "path", src.Path, "reason", "missing document_id")
			continue
		}
		msgs = append(msgs, publishcmd.PublishDocumentCommand{
			DocumentID: docID,
			Markdown:   src.Body,
			StartIndex: s.startIndex,
			Append:     s.appendMode || src.FrontMatter.Append,
			SourcePath: src.Path,
			Force:      s.force,
		})
	}
	return msgs, nil
}

func runPublish(args []string) error {
	fs := flag.NewFlagSet("md2docs-publish", flag.ExitOnError)
	filePath := fs.String("file", "", "Markdown file to publish (- reads stdin)")
	dir := fs.String("dir", "", "Publish every markdown file under this directory that names a document_id")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied with --dir")
	recursive := fs.Bool("recursive", false, "Descend into sub-directories with --dir")
	documentID := fs.String("document-id", "", "Target document (defaults to front matter document_id)")
	credentials := fs.String("credentials", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), "Service account credentials JSON")
	endpoint := fs.String("endpoint", "", "Override the Docs API endpoint")
	startIndex := fs.Int("start-index", 0, "Insert at this index instead of the document start")
	ledgerDSN := fs.String("ledger", "", "Ledger database DSN; unchanged sources are skipped")
	ledgerDriver := fs.String("ledger-driver", "sqlite3", "Ledger database driver (sqlite3 or postgres)")
	force := fs.Bool("force", false, "Publish even when the ledger shows no change")
	appendMode := fs.Bool("append", false, "Insert after the existing body (front matter append also enables this)")
	schedule := fs.String("schedule", "", "Cron expression (e.g. @hourly); keep running and republish on every tick")
	logLevel := fs.String("log-level", "info", "Log level (trace, debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*filePath == "") == (*dir == "") {
		return fmt.Errorf("exactly one of --file or --dir is required")
	}
	if *dir != "" && strings.TrimSpace(*documentID) != "" {
		return fmt.Errorf("--document-id cannot be combined with --dir")
	}
	expression := strings.TrimSpace(*schedule)
	if expression != "" && *filePath == "-" {
		return fmt.Errorf("--schedule cannot read from stdin")
	}

	src := sources{
		file:       *filePath,
		dir:        *dir,
		pattern:    *pattern,
		recursive:  *recursive,
		documentID: *documentID,
		startIndex: *startIndex,
		appendMode: *appendMode,
		force:      *force,
	}

	module, err := moduleBuilder(bootstrap.Options{
		Publish:         true,
		CredentialsFile: *credentials,
		Endpoint:        *endpoint,
		LedgerDriver:    *ledgerDriver,
		LedgerDSN:       *ledgerDSN,
		LogLevel:        *logLevel,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.Publish == nil {
		return fmt.Errorf("publish handler not configured")
	}
	if module.Module != nil {
		defer module.Module.Close()
	}

	if expression != "" {
		return runScheduled(module, src, expression)
	}

	ctx := context.Background()
	msgs, err := src.messages(ctx, module.Logger)
	if err != nil {
		return err
	}

	reports := []*publish.Report{}
	for _, msg := range msgs {
		msg.OnReport = func(r *publish.Report) {
			reports = append(reports, r)
		}
		if err := module.Publish.Execute(ctx, msg); err != nil {
			return fmt.Errorf("publish %s: %w", msg.SourcePath, err)
		}
	}

	if src.dir == "" && len(reports) == 1 {
		return bootstrap.WriteJSON(stdout, reports[0], true)
	}
	return bootstrap.WriteJSON(stdout, reports, true)
}

// runScheduled republishes the sources on every cron tick until the process
// is interrupted. Sources are re-read per tick and each report is printed as
// one JSON line; the ledger, when configured, skips unchanged documents.
func runScheduled(module *bootstrap.Module, src sources, expression string) error {
	logger := logging.OrNoOp(module.Logger)
	sched := newScheduler(logger)

	registrar := func(cfg command.HandlerConfig, handler any) error {
		_, err := sched.AddHandler(cfg, handler)
		return err
	}
	source := func(ctx context.Context) ([]publishcmd.PublishDocumentCommand, error) {
		msgs, err := src.messages(ctx, logger)
		if err != nil {
			return nil, err
		}
		for i := range msgs {
			msgs[i].OnReport = func(r *publish.Report) {
				if err := bootstrap.WriteJSON(stdout, r, false); err != nil {
					logger.Error("publish.schedule.report_failed", "error", err)
				}
			}
		}
		return msgs, nil
	}

	cfg := command.HandlerConfig{Expression: expression}
	if err := publishcmd.RegisterPublishCron(registrar, module.Publish, cfg, source); err != nil {
		return fmt.Errorf("schedule publish: %w", err)
	}

	ctx, stop := shutdownContext()
	defer stop()

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	logger.Info("publish.schedule.started", "expression", expression)

	<-ctx.Done()
	logger.Info("publish.schedule.stopped")
	return sched.Stop(context.Background())
}
