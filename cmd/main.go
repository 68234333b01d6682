package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richard-senior/htft/internal/config"
	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/internal/processor"
	"github.com/richard-senior/htft/pkg/loader"
	"github.com/richard-senior/htft/pkg/report"
	"github.com/richard-senior/htft/pkg/server"
	"github.com/richard-senior/htft/pkg/stats"
	"github.com/richard-senior/htft/pkg/tools"
	"github.com/richard-senior/htft/pkg/transport"
)

const usage = `usage: htft [-config file] [command] [args]

commands:
  serve                          run the MCP server on stdin/stdout (default)
  analyze <source> [strategy...] print a report; -format overrides report.format
  list                           print the strategy catalogue
  export <source> <db>           append an analysis snapshot to a SQLite database
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code. Failures are
// printed to stderr because the log usually goes to a file.
func run(argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("htft", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv("HTFT_CONFIG"), "YAML configuration file")
	format := fs.String("format", "", "Report format: text, json, html or markdown")
	insights := fs.Bool("insights", false, "Ask the configured provider for a narrative analysis")
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	command := "serve"
	args := fs.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	// stdout carries protocol traffic or the report
	if cfg.Log.Output == "console" {
		cfg.Log.Output = "file"
	}
	if err := cfg.ApplyLogging(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer logger.Close()

	logger.Info("Starting htft", command)
	for i, arg := range args {
		logger.Debug(fmt.Sprintf("Argument %d:", i+1), arg)
	}

	ctx := context.Background()
	switch command {
	case "serve":
		err = serve(ctx, cfg)
	case "analyze":
		err = analyze(ctx, cfg, stdout, args, *format, *insights, "")
	case "export":
		if len(args) != 2 {
			err = fmt.Errorf("export needs a source and a database path")
			break
		}
		err = analyze(ctx, cfg, stdout, args[:1], *format, *insights, args[1])
	case "list":
		err = list(stdout)
	default:
		fs.Usage()
		return 2
	}

	if err != nil {
		logger.Error("Command failed:", command, err)
		fmt.Fprintf(stderr, "htft %s: %v\n", command, err)
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config) error {
	tb := tools.NewToolbox(tools.Options{
		Engine:    stats.Default(),
		Loader:    loader.New(cfg.ClientOptions()),
		Formatter: cfg.Formatter(ctx),
		Parse:     cfg.ParseOptions(),
	})
	s := server.New(transport.NewStdioTransport(), server.Options{
		Name:     cfg.Server.Name,
		Version:  cfg.Server.Version,
		Toolbox:  tb,
		Language: cfg.Insight.Language,
	})

	logger.Info("Starting MCP server...")
	if err := s.Start(ctx); err != nil {
		return err
	}
	logger.Info("MCP server shutting down")
	return nil
}

func analyze(ctx context.Context, cfg *config.Config, w io.Writer, args []string, format string, insights bool, export string) error {
	if len(args) == 0 {
		return fmt.Errorf("analyze needs a source")
	}
	if format == "" {
		format = cfg.Report.Format
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}

	p := processor.New(processor.Options{
		Loader:    loader.New(cfg.ClientOptions()),
		Formatter: cfg.Formatter(ctx),
		Parse:     cfg.ParseOptions(),
		Format:    f,
		Top:       cfg.Report.Top,
	})
	out, err := p.Process(ctx, processor.Request{
		RequestID:  fmt.Sprintf("htft-%d", os.Getpid()),
		Source:     args[0],
		Strategies: args[1:],
		Insights:   insights,
		Export:     export,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func list(w io.Writer) error {
	for i, e := range tools.CatalogueEntries(stats.Default()) {
		kind := "always"
		if e.Conditional {
			kind = "conditional"
		}
		fmt.Fprintf(w, "%2d. %-40s %-10s %-11s %s\n", i+1, e.Name, e.Category, kind, strings.TrimSpace(e.Description))
	}
	return nil
}
