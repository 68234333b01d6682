package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/richard-senior/htft/internal/config"
	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/internal/processor"
	"github.com/richard-senior/htft/pkg/loader"
	"github.com/richard-senior/htft/pkg/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run processes one request and returns the exit code. Setup failures go to
// stderr since the log is redirected to a file while stdout carries the report.
func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// Parse command line flags
	fs := flag.NewFlagSet("htft-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	debug := fs.Bool("debug", false, "Enable debug logging")
	configPath := fs.String("config", os.Getenv("HTFT_CONFIG"), "YAML configuration file")
	inputFile := fs.String("input", "", "JSON request file (if not provided, arguments or stdin are used)")
	outputFile := fs.String("output", "", "Output file path (if not provided, stdout will be used)")
	format := fs.String("format", "", "Report format: text, json, html or markdown")
	insights := fs.Bool("insights", false, "Include a narrative analysis from the configured provider")
	export := fs.String("export", "", "SQLite database to append the analysis to")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	fail := func(msg string, err error) int {
		logger.Error(msg, err)
		fmt.Fprintf(stderr, "htft-cli: %s: %v\n", msg, err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if *debug {
		cfg.Log.Level = "debug"
	}
	// the report goes to stdout unless -output is given
	if *outputFile == "" && cfg.Log.Output == "console" {
		cfg.Log.Output = "file"
	}
	if err := cfg.ApplyLogging(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer logger.Close()

	logger.Info("Starting htft CLI")

	// Determine input source
	var input []byte
	switch {
	case *inputFile != "":
		input, err = os.ReadFile(*inputFile)
		if err != nil {
			return fail("Failed to read input file", err)
		}
	case fs.NArg() > 0:
		// first argument is the match file, the rest are strategies to drill into
		input, err = json.Marshal(processor.Request{
			RequestID:  fmt.Sprintf("cli-%d", os.Getpid()),
			Source:     fs.Arg(0),
			Strategies: fs.Args()[1:],
		})
		if err != nil {
			return fail("Failed to create request from command line arguments", err)
		}
	default:
		input, err = io.ReadAll(stdin)
		if err != nil {
			return fail("Failed to read from stdin", err)
		}
	}

	input, err = overlay(input, *format, *insights, *export)
	if err != nil {
		return fail("Invalid request", err)
	}

	reportFormat, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return fail("Invalid report format", err)
	}

	ctx := context.Background()
	p := processor.New(processor.Options{
		Loader:    loader.New(cfg.ClientOptions()),
		Formatter: cfg.Formatter(ctx),
		Parse:     cfg.ParseOptions(),
		Format:    reportFormat,
		Top:       cfg.Report.Top,
	})

	// Process the input; a failed request still produces an error document
	result, procErr := p.ProcessRequest(ctx, input)

	if *outputFile != "" {
		err = os.WriteFile(*outputFile, result, 0644)
	} else {
		_, err = stdout.Write(result)
	}
	if err != nil {
		return fail("Failed to write result", err)
	}

	if procErr != nil {
		return fail("Failed to process request", procErr)
	}
	logger.Info("htft CLI completed successfully")
	return 0
}

// overlay applies the command line flags on top of a JSON request
func overlay(input []byte, format string, insights bool, export string) ([]byte, error) {
	if format == "" && !insights && export == "" {
		return input, nil
	}
	var req processor.Request
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, err
	}
	if format != "" {
		req.Format = format
	}
	if insights {
		req.Insights = true
	}
	if export != "" {
		req.Export = export
	}
	return json.Marshal(req)
}
