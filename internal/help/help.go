// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// TopicInfo describes one kind of input the importer understands.
type TopicInfo struct {
	Name                string   // Name of the topic (e.g., "pdf")
	ShortDescription    string   // Short description for the topics list
	DetailedDescription string   // What is read from the file and how
	Extensions          []string // File extensions covered by the topic
	Fields              []string // Invoice fields the topic can fill
	ConfigurationInfo   string   // Related configuration settings
	Examples            []string // Usage examples
}

// Provider supplies help content for a topic.
type Provider interface {
	GetTopicInfo() TopicInfo
}

// staticTopic lets built-in topics satisfy Provider.
type staticTopic TopicInfo

func (s staticTopic) GetTopicInfo() TopicInfo { return TopicInfo(s) }

// System manages help content for the application
type System struct {
	providers map[string]Provider
	out       io.Writer
	colors    map[string]*color.Color
}

// NewSystem creates a help system writing to out with the built-in topics
// registered.
func NewSystem(out io.Writer, noColor bool) *System {
	colors := map[string]*color.Color{
		"title":   color.New(color.FgWhite, color.Bold),
		"header":  color.New(color.FgBlue, color.Bold),
		"item":    color.New(color.FgCyan),
		"warning": color.New(color.FgYellow),
		"example": color.New(color.FgMagenta),
	}
	for _, c := range colors {
		if noColor {
			c.DisableColor()
		}
	}

	h := &System{
		providers: make(map[string]Provider),
		out:       out,
		colors:    colors,
	}
	for _, topic := range builtinTopics() {
		h.RegisterProvider(staticTopic(topic))
	}
	return h
}

// RegisterProvider adds a help provider to the system
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetTopicInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

// ShowGeneralHelp displays general help information. formats lists the
// registered output formats.
func (h *System) ShowGeneralHelp(formats []string) {
	h.colors["title"].Fprintln(h.out, "Invoice Import - Read invoices from PDF, Word, Excel, CSV and text files")
	fmt.Fprintln(h.out, "=========================================================================")
	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "USAGE:")
	fmt.Fprintln(h.out, "  invoice-import [options] <file>...")
	fmt.Fprintln(h.out, "  invoice-import --web [--port <port>]  # Web server mode")
	fmt.Fprintln(h.out)

	h.colors["header"].Fprintln(h.out, "OPTIONS:")

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --current\t<path>\tInvoice or template JSON to merge the import into")
	fmt.Fprintln(w, "  --workers\t<n>\tConcurrent imports when several files are given (default: one per CPU)")
	fmt.Fprintf(w, "  --format\t<format>\tOutput format: %s (default: text)\n", strings.Join(formats, ", "))
	fmt.Fprintln(w, "  --output\t<path>\tPath to output file (if not specified, output to stdout)")
	fmt.Fprintln(w, "  --save-template\t<path>\tWrite the merged invoice as a reusable template (bare names go to the template dir)")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "  --list-profiles\t\tList available profiles")
	fmt.Fprintln(w, "  --pdf-engine\t<engine>\tPDF text engine: scan, layout, pdfcpu (default: scan)")
	fmt.Fprintln(w, "  --extended\t\tRead GST details (GSTIN, PAN, HSN/SAC, CGST/SGST/IGST)")
	fmt.Fprintln(w, "  --show-text\t\tInclude the extracted document text in the output")
	fmt.Fprintln(w, "  --verbose\t\tInclude ids, attachment data and diagnostics")
	fmt.Fprintln(w, "  --debug\t\tLog extraction steps and timings to stderr")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --web\t\tStart web server mode")
	fmt.Fprintln(w, "  --port\t<port>\tPort for web server (default: 8080, only used with --web)")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help\t\tShow this help message")
	fmt.Fprintln(w, "  --help topics\t\tList supported file types")
	fmt.Fprintln(w, "  --help <topic>\t\tShow detailed help for a file type")
	w.Flush()

	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "EXAMPLES:")
	h.colors["example"].Fprintln(h.out, "  invoice-import invoice.pdf")
	h.colors["example"].Fprintln(h.out, "  invoice-import --current draft.json --save-template merged.json quote.docx")
	h.colors["example"].Fprintln(h.out, "  invoice-import --profile gst --format json bill.xlsx")
	h.colors["example"].Fprintln(h.out, "  invoice-import --format json march/*.pdf  # one JSON line per file")
	h.colors["example"].Fprintln(h.out, "  invoice-import --web --port 9000")

	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
	fmt.Fprintln(h.out, "  Project config: invoice-import.yaml or .invoice-import.yaml (in current directory)")
	fmt.Fprintln(h.out, "  User config: <user config dir>/invoice-import/config.yaml")
	fmt.Fprintln(h.out, "  Environment: INVOICE_IMPORT_CONFIG_DIR - Override config directory")
}

// ShowTopicsHelp lists every registered topic.
func (h *System) ShowTopicsHelp() {
	h.colors["title"].Fprintln(h.out, "Supported File Types")
	fmt.Fprintln(h.out, "====================")
	fmt.Fprintln(h.out)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  TOPIC\tEXTENSIONS\tDESCRIPTION")
	for _, name := range h.topicNames() {
		info := h.providers[name].GetTopicInfo()
		fmt.Fprintf(w, "  %s\t%s\t%s\n", info.Name, strings.Join(info.Extensions, " "), info.ShortDescription)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "Use 'invoice-import --help <topic>' for details.")
}

// ShowTopicHelp prints one topic. It reports false for unknown names.
func (h *System) ShowTopicHelp(name string) bool {
	provider, ok := h.providers[strings.ToLower(strings.TrimPrefix(name, "."))]
	if !ok {
		h.colors["warning"].Fprintf(h.out, "Unknown help topic %q\n", name)
		fmt.Fprintf(h.out, "Available topics: %s\n", strings.Join(h.topicNames(), ", "))
		return false
	}
	info := provider.GetTopicInfo()

	h.colors["title"].Fprintf(h.out, "%s\n", strings.ToUpper(info.Name))
	fmt.Fprintln(h.out, strings.Repeat("=", len(info.Name)))
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, info.DetailedDescription)

	if len(info.Extensions) > 0 {
		fmt.Fprintln(h.out)
		h.colors["header"].Fprintln(h.out, "EXTENSIONS:")
		for _, ext := range info.Extensions {
			h.colors["item"].Fprintf(h.out, "  %s\n", ext)
		}
	}
	if len(info.Fields) > 0 {
		fmt.Fprintln(h.out)
		h.colors["header"].Fprintln(h.out, "FIELDS:")
		for _, field := range info.Fields {
			fmt.Fprintf(h.out, "  - %s\n", field)
		}
	}
	if info.ConfigurationInfo != "" {
		fmt.Fprintln(h.out)
		h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
		fmt.Fprintf(h.out, "  %s\n", info.ConfigurationInfo)
	}
	if len(info.Examples) > 0 {
		fmt.Fprintln(h.out)
		h.colors["header"].Fprintln(h.out, "EXAMPLES:")
		for _, example := range info.Examples {
			h.colors["example"].Fprintf(h.out, "  %s\n", example)
		}
	}
	return true
}

func (h *System) topicNames() []string {
	names := make([]string, 0, len(h.providers))
	for name := range h.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var commonFields = []string{
	"title", "invoice number", "issue and due dates", "currency",
	"company and client", "line items", "notes and terms",
}

func builtinTopics() []TopicInfo {
	return []TopicInfo{
		{
			Name:             "pdf",
			ShortDescription: "Text based PDF documents",
			DetailedDescription: "Reads text drawn by the document's content streams. Compressed streams are inflated\n" +
				"before scanning. Scanned images carry no text and are reported as empty.",
			Extensions:        []string{".pdf"},
			Fields:            commonFields,
			ConfigurationInfo: "import.pdf_engine (scan, layout, pdfcpu) and import.max_pages",
			Examples:          []string{"invoice-import invoice.pdf", "invoice-import --pdf-engine layout statement.pdf"},
		},
		{
			Name:                "docx",
			ShortDescription:    "Word documents",
			DetailedDescription: "Reads paragraphs and table cells from word/document.xml in document order.",
			Extensions:          []string{".docx"},
			Fields:              commonFields,
			ConfigurationInfo:   "import.max_inflate_size bounds each decompressed part",
			Examples:            []string{"invoice-import quote.docx"},
		},
		{
			Name:             "xlsx",
			ShortDescription: "Excel workbooks",
			DetailedDescription: "Reads every worksheet row, resolving shared strings. Cells of a row are joined with\n" +
				"commas, keeping empty cells in place. Legacy binary .xls files are not read.",
			Extensions:        []string{".xlsx", ".xls"},
			Fields:            commonFields,
			ConfigurationInfo: "import.max_inflate_size bounds each decompressed part",
			Examples:          []string{"invoice-import bill.xlsx"},
		},
		{
			Name:             "text",
			ShortDescription: "CSV, TSV and plain text",
			DetailedDescription: "Used as is. UTF-8 and UTF-16 byte order marks are honoured; other bytes that are\n" +
				"not valid UTF-8 are read as Latin-1. Any text/* upload is accepted.",
			Extensions: []string{".csv", ".tsv", ".txt", ".text"},
			Fields:     commonFields,
			Examples:   []string{"invoice-import export.csv"},
		},
		{
			Name:             "gst",
			ShortDescription: "Indian GST invoices (extended mode)",
			DetailedDescription: "Extended mode also reads GSTIN, PAN, state and state code for both parties, HSN/SAC\n" +
				"codes and the CGST/SGST/IGST treatment. It switches on by itself when a GSTIN is found.",
			Fields:            []string{"gstin", "pan", "state and state code", "place of supply", "hsn/sac", "e-way bill", "irn", "amount in words"},
			ConfigurationInfo: "import.extended, or the built-in gst profile",
			Examples:          []string{"invoice-import --profile gst bill.pdf", "invoice-import --extended bill.pdf"},
		},
	}
}
