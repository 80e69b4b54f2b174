// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"invoice-architect/internal/config"
	"invoice-architect/internal/core"
	"invoice-architect/internal/formatters"
	"invoice-architect/internal/help"
	"invoice-architect/internal/invoice"
	"invoice-architect/internal/observability"
	"invoice-architect/internal/parallel"
	"invoice-architect/internal/paths"
	"invoice-architect/internal/preprocessors"
	"invoice-architect/internal/version"
	"invoice-architect/internal/web"

	// Import formatters to register them
	_ "invoice-architect/internal/formatters/csv"
	_ "invoice-architect/internal/formatters/json"
	_ "invoice-architect/internal/formatters/text"
	_ "invoice-architect/internal/formatters/yaml"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// cliFlags holds command line flag values
type cliFlags struct {
	file         string
	files        []string
	workers      int
	current      string
	format       string
	output       string
	saveTemplate string
	configFile   string
	profileName  string
	listProfiles bool
	pdfEngine    string
	extended     bool
	showText     bool
	verbose      bool
	debug        bool
	noColor      bool
	webMode      bool
	port         int
	showVersion  bool
	showHelp     bool
}

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// isFlagSet reports whether a flag was given on the command line.
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// resolveConfiguration applies the profile, then explicit flags, to cfg.
func resolveConfiguration(cfg *config.Config, profile *config.Profile, flags *cliFlags) *config.Config {
	final := cfg.Apply(profile)

	if isFlagSet("format") && flags.format != "" {
		final.Defaults.Format = flags.format
	}
	if isFlagSet("verbose") {
		final.Defaults.Verbose = flags.verbose
	}
	if isFlagSet("debug") {
		final.Defaults.Debug = flags.debug
	}
	if isFlagSet("no-color") {
		final.Defaults.NoColor = flags.noColor
	}
	if isFlagSet("show-text") {
		final.Defaults.ShowText = flags.showText
	}
	if isFlagSet("pdf-engine") && flags.pdfEngine != "" {
		final.Import.PDFEngine = flags.pdfEngine
	}
	if isFlagSet("extended") {
		final.Import.Extended = flags.extended
	}
	if isFlagSet("port") {
		final.Web.Port = flags.port
	}
	return final
}

// handleProfiles lists profiles or returns the selected one.
func handleProfiles(cfg *config.Config, flags *cliFlags) (*config.Profile, bool) {
	if flags.listProfiles {
		fmt.Println("Available profiles:")
		for _, name := range cfg.ListProfiles() {
			profile := cfg.GetProfile(name)
			if profile != nil && profile.Description != "" {
				fmt.Printf("  - %s: %s\n", name, profile.Description)
			} else {
				fmt.Printf("  - %s\n", name)
			}
		}
		return nil, true
	}

	if flags.profileName == "" {
		return nil, false
	}
	profile := cfg.GetProfile(flags.profileName)
	if profile == nil {
		fmt.Fprintf(os.Stderr, "Error: Profile '%s' not found\n", flags.profileName)
		fmt.Fprintf(os.Stderr, "Available profiles: %s\n", strings.Join(cfg.ListProfiles(), ", "))
		os.Exit(exitUsage)
	}
	return profile, false
}

// detectMIMEType uses the extension, sniffing only files that have none.
func detectMIMEType(path string, data []byte) string {
	if ext := filepath.Ext(path); ext != "" {
		return mime.TypeByExtension(strings.ToLower(ext))
	}
	return http.DetectContentType(data)
}

// loadCurrent reads the invoice to merge into. Without a path a blank
// invoice in the default currency is used.
func loadCurrent(path string, importer *core.Importer, currency string) (invoice.Invoice, *invoice.TemplateData, error) {
	base := invoice.New(currency)
	if path == "" {
		return base, nil, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return base, nil, err
	}
	defer f.Close()

	data, err := invoice.DecodeTemplate(f)
	if err != nil {
		return base, nil, err
	}
	return importer.RestoreTemplate(base, data), data, nil
}

func saveTemplate(path string, result *core.ImportResult, previous *invoice.TemplateData) error {
	var logo string
	var attachments []invoice.Attachment
	if previous != nil {
		logo = previous.Logo
		attachments = append(attachments, previous.Attachments...)
	}
	if result.Attachment != nil {
		attachments = append(attachments, *result.Attachment)
	}

	dest, err := paths.TemplatePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := invoice.ExportTemplate(f, result.Invoice, logo, attachments); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeOutput(path, content string) error {
	if path == "" {
		fmt.Print(content)
		if !strings.HasSuffix(content, "\n") {
			fmt.Println()
		}
		return nil
	}
	if err := paths.ValidatePath(path); err != nil {
		return err
	}
	return os.WriteFile(filepath.Clean(path), []byte(content), 0600)
}

// runWebServer blocks until the server fails or a signal arrives.
func runWebServer(ctx context.Context, importer *core.Importer, cfg *config.Config) error {
	server := web.NewWebServer(cfg.Web.Port, importer, cfg.Import.DefaultCurrency, cfg.Import.MaxFileSize)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		fmt.Println("\nShutting down web server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Stop(shutdownCtx)
	}
}

func readSource(path string) (preprocessors.Source, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return preprocessors.Source{}, err
	}
	return preprocessors.Source{
		Name:     filepath.Base(path),
		MIMEType: detectMIMEType(path, data),
		Data:     data,
	}, nil
}

func reportImportError(name string, err error, result *core.ImportResult, cfg *config.Config) {
	var extractionErr *preprocessors.ExtractionError
	if errors.As(err, &extractionErr) {
		fmt.Fprintf(os.Stderr, "Error: %s: %s\n", name, extractionErr.UserMessage())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", name, err)
	}
	if result != nil && (cfg.Defaults.Verbose || cfg.Defaults.Debug) {
		for _, d := range result.Diagnostics.Strings() {
			fmt.Fprintf(os.Stderr, "  %s\n", d)
		}
	}
}

func formatterOptions(cfg *config.Config, flags *cliFlags, name string) formatters.FormatterOptions {
	return formatters.FormatterOptions{
		Filename: name,
		Verbose:  cfg.Defaults.Verbose,
		NoColor:  cfg.Defaults.NoColor || flags.output != "",
		ShowText: cfg.Defaults.ShowText,
		Compact:  len(flags.files) > 1,
	}
}

func runImport(ctx context.Context, importer *core.Importer, cfg *config.Config, flags *cliFlags, debugObs *observability.DebugObserver) int {
	src, err := readSource(flags.files[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", flags.files[0], err)
		return exitFailed
	}
	if debugObs != nil {
		debugObs.LogDetail("main", fmt.Sprintf("Importing %s as %q", src.Name, src.MIMEType))
	}

	current, previous, err := loadCurrent(flags.current, importer, cfg.Import.DefaultCurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read current invoice %s: %v\n", flags.current, err)
		return exitFailed
	}

	result, err := importer.Import(ctx, src, current)
	if err != nil {
		reportImportError(src.Name, err, result, cfg)
		return exitFailed
	}

	content, err := formatters.Export(cfg.Defaults.Format, result, formatterOptions(cfg, flags, src.Name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	if err := writeOutput(flags.output, content); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot write output: %v\n", err)
		return exitFailed
	}

	if flags.saveTemplate != "" {
		if err := saveTemplate(flags.saveTemplate, result, previous); err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot save template: %v\n", err)
			return exitFailed
		}
	}
	return exitOK
}

// runBatch imports every file into the same current invoice and prints
// the results in argument order.
func runBatch(ctx context.Context, importer *core.Importer, cfg *config.Config, flags *cliFlags, observer *observability.StandardObserver) int {
	current, _, err := loadCurrent(flags.current, importer, cfg.Import.DefaultCurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read current invoice %s: %v\n", flags.current, err)
		return exitFailed
	}

	code := exitOK
	var sources []preprocessors.Source
	for _, path := range flags.files {
		src, err := readSource(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", path, err)
			code = exitFailed
			continue
		}
		sources = append(sources, src)
	}

	var out strings.Builder
	for _, r := range parallel.ImportAll(ctx, importer, current, sources, flags.workers, observer) {
		if r.Error != nil {
			reportImportError(r.Name, r.Error, r.Import, cfg)
			code = exitFailed
			continue
		}
		content, err := formatters.Export(cfg.Defaults.Format, r.Import, formatterOptions(cfg, flags, r.Name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitUsage
		}
		out.WriteString(strings.TrimRight(content, "\n"))
		out.WriteString("\n")
		if strings.EqualFold(cfg.Defaults.Format, "text") {
			out.WriteString("\n")
		}
	}

	if out.Len() > 0 {
		if err := writeOutput(flags.output, out.String()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot write output: %v\n", err)
			return exitFailed
		}
	}
	return code
}

func main() {
	flags := &cliFlags{}
	flag.StringVar(&flags.file, "file", "", "Path to the file to import (files may also be given as arguments)")
	flag.IntVar(&flags.workers, "workers", 0, "Concurrent imports when several files are given (default: one per CPU)")
	flag.StringVar(&flags.current, "current", "", "Invoice or template JSON to merge the import into")
	flag.StringVar(&flags.format, "format", "", "Output format: "+strings.Join(formatters.List(), ", ")+" (default: text)")
	flag.StringVar(&flags.output, "output", "", "Path to output file (if not specified, output to stdout)")
	flag.StringVar(&flags.saveTemplate, "save-template", "", "Write the merged invoice as a template JSON file")
	flag.StringVar(&flags.configFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&flags.profileName, "profile", "", "Profile name to use from config file")
	flag.BoolVar(&flags.listProfiles, "list-profiles", false, "List available profiles")
	flag.StringVar(&flags.pdfEngine, "pdf-engine", "", "PDF text engine: scan, layout, pdfcpu")
	flag.BoolVar(&flags.extended, "extended", false, "Read GST details")
	flag.BoolVar(&flags.showText, "show-text", false, "Include the extracted text in the output")
	flag.BoolVar(&flags.verbose, "verbose", false, "Include ids, attachment data and diagnostics")
	flag.BoolVar(&flags.debug, "debug", false, "Log extraction steps and timings to stderr")
	flag.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&flags.webMode, "web", false, "Start web server mode")
	flag.IntVar(&flags.port, "port", config.DefaultWebPort, "Port for web server")
	flag.BoolVar(&flags.showVersion, "version", false, "Show version information")
	flag.BoolVar(&flags.showHelp, "help", false, "Show help information")
	flag.Parse()

	if flags.showVersion {
		fmt.Println(version.Info())
		return
	}

	isInteractive := term.IsTerminal(int(os.Stdout.Fd()))

	if flags.showHelp {
		h := help.NewSystem(os.Stdout, flags.noColor || !isInteractive)
		switch topic := flag.Arg(0); topic {
		case "":
			h.ShowGeneralHelp(formatters.List())
		case "topics":
			h.ShowTopicsHelp()
		default:
			if !h.ShowTopicHelp(topic) {
				os.Exit(exitUsage)
			}
		}
		return
	}

	if flags.file != "" {
		flags.files = append(flags.files, flags.file)
	}
	flags.files = append(flags.files, flag.Args()...)

	cfg := loadConfiguration(flags.configFile)
	profile, done := handleProfiles(cfg, flags)
	if done {
		return
	}
	final := resolveConfiguration(cfg, profile, flags)
	if !isInteractive || os.Getenv("NO_COLOR") != "" {
		final.Defaults.NoColor = true
	}

	var debugObs *observability.DebugObserver
	observer := observability.NewObserver(final.Defaults.Debug, os.Stderr)
	if final.Defaults.Debug {
		debugObs = observer.DebugObserver
		debugObs.LogDetail("main", fmt.Sprintf("Command line arguments: %v", os.Args))
		if profile != nil {
			debugObs.LogDetail("main", fmt.Sprintf("Using profile: %s", flags.profileName))
		}
	}

	opts, err := core.OptionsFromConfig(final, observer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(exitUsage)
	}
	importer := core.NewImporter(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.webMode {
		if len(flags.files) > 0 {
			fmt.Fprintln(os.Stderr, "Error: --web does not take a file argument")
			os.Exit(exitUsage)
		}
		if err := runWebServer(ctx, importer, final); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitFailed)
		}
		return
	}

	if len(flags.files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no file given")
		fmt.Fprintln(os.Stderr, "Usage: invoice-import [options] <file>...  (see --help)")
		os.Exit(exitUsage)
	}

	var code int
	if len(flags.files) == 1 {
		code = runImport(ctx, importer, final, flags, debugObs)
	} else {
		if flags.saveTemplate != "" {
			fmt.Fprintln(os.Stderr, "Error: --save-template needs a single file")
			os.Exit(exitUsage)
		}
		code = runBatch(ctx, importer, final, flags, observer)
	}
	stop()
	os.Exit(code)
}
