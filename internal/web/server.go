// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"invoice-architect/internal/core"
	"invoice-architect/internal/formatters"
	formatterShared "invoice-architect/internal/formatters/shared"
	"invoice-architect/internal/invoice"
	"invoice-architect/internal/preprocessors"
	"invoice-architect/internal/version"

	// Import formatters to register them
	_ "invoice-architect/internal/formatters/csv"
	_ "invoice-architect/internal/formatters/json"
	_ "invoice-architect/internal/formatters/text"
	_ "invoice-architect/internal/formatters/yaml"
)

// formOverhead is allowed on top of the file size limit for multipart framing
// and the optional current invoice.
const formOverhead = 1 << 20

// WebServer represents the web server instance
type WebServer struct {
	port            int
	importer        *core.Importer
	defaultCurrency string
	maxUpload       int64
	server          *http.Server
}

// ImportResponse is the JSON envelope of POST /import.
type ImportResponse struct {
	Success   bool                    `json:"success"`
	Result    *formatterShared.Report `json:"result,omitempty"`
	Error     string                  `json:"error,omitempty"`
	ErrorType string                  `json:"errorType,omitempty"`
}

// RestoreResponse is the JSON envelope of POST /template/restore.
type RestoreResponse struct {
	Success     bool                 `json:"success"`
	Invoice     *invoice.Invoice     `json:"invoice,omitempty"`
	Logo        string               `json:"logo,omitempty"`
	Attachments []invoice.Attachment `json:"attachments,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// NewWebServer creates a new web server instance. maxUpload bounds the
// accepted file size; zero selects the import default.
func NewWebServer(port int, importer *core.Importer, defaultCurrency string, maxUpload int64) *WebServer {
	if maxUpload <= 0 {
		maxUpload = preprocessors.DefaultMaxFileSize
	}
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &WebServer{
		port:            port,
		importer:        importer,
		defaultCurrency: defaultCurrency,
		maxUpload:       maxUpload,
	}
}

// Router builds the HTTP routes.
func (ws *WebServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", ws.handleHealth)
	r.Get("/formats", ws.handleFormats)
	r.Post("/import", ws.handleImport)
	r.Post("/template/restore", ws.handleRestore)
	return r
}

// Start starts the web server, trying the next ports when the requested
// one is busy.
func (ws *WebServer) Start() error {
	handler := ws.Router()

	var lastError error
	for i := 0; i < 10; i++ {
		currentPort := ws.port + i

		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", currentPort))
		if err != nil {
			lastError = err
			if i == 0 {
				fmt.Printf("Port %d is not available, trying alternative ports...\n", currentPort)
			}
			continue
		}

		ws.server = ws.createSecureServer(currentPort, handler)

		fmt.Printf("Invoice import service started on port %d\n", currentPort)
		fmt.Printf("Local:     http://localhost:%d\n", currentPort)

		if err := ws.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lastError = err
			fmt.Printf("Server on port %d failed: %v\n", currentPort, err)
			continue
		}
		return nil
	}

	return fmt.Errorf("could not find an available port in range %d-%d\n"+
		"Last error: %v\n"+
		"Troubleshooting:\n"+
		"  1. Try a specific port with --port <number>\n"+
		"  2. Ensure you have permission to bind to the requested port", ws.port, ws.port+9, lastError)
}

// Stop shuts the web server down, waiting for requests in flight.
func (ws *WebServer) Stop(ctx context.Context) error {
	if ws.server != nil {
		return ws.server.Shutdown(ctx)
	}
	return nil
}

func (ws *WebServer) createSecureServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	buildInfo := version.Get()

	healthData := map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    version.Name,
		"version":    buildInfo.Version,
		"build_info": buildInfo,
		"extensions": ws.importer.SupportedExtensions(),
	}

	writeJSON(w, http.StatusOK, healthData)
}

func (ws *WebServer) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formatters.GetSupportedFormats())
}

// handleImport reads the multipart "file" field, merges it into the
// optional "current" invoice and answers in the requested format.
func (ws *WebServer) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ws.maxUpload+formOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ws.sendErrorWithStatus(w, "File too large", "file_size", http.StatusRequestEntityTooLarge)
			return
		}
		ws.sendError(w, "Failed to parse form data")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}
	if _, ok := formatters.Get(format); !ok {
		ws.sendError(w, fmt.Sprintf("Unknown format %q", sanitizeUserInput(format, 20)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ws.sendError(w, "No file uploaded")
		return
	}
	defer file.Close()

	src, err := readSource(file, header)
	if err != nil {
		ws.sendErrorWithStatus(w, "Failed to read uploaded file", "", http.StatusBadRequest)
		return
	}

	current, err := ws.currentInvoice(r.FormValue("current"))
	if err != nil {
		ws.sendError(w, fmt.Sprintf("Invalid current invoice: %v", err))
		return
	}

	result, err := ws.importer.Import(r.Context(), src, current)
	if err != nil {
		// The caller keeps its own invoice; nothing is sent back.
		errType := preprocessors.ClassifyError(err)
		writeJSON(w, statusFor(errType), ImportResponse{
			Success:   false,
			Error:     ws.enhanceErrorMessage(userMessage(err), errType),
			ErrorType: string(errType),
		})
		return
	}

	options := formatters.FormatterOptions{
		Filename: sanitizeUserInput(filepath.Base(header.Filename), 255),
		Verbose:  r.URL.Query().Get("verbose") == "true",
		ShowText: r.URL.Query().Get("text") == "true",
		NoColor:  true,
	}

	if format == "json" {
		report := formatterShared.BuildReport(result, options)
		writeJSON(w, http.StatusOK, ImportResponse{Success: true, Result: &report})
		return
	}

	content, mimeType, filename, err := formatters.ExportForWeb(format, result, options)
	if err != nil {
		ws.sendErrorWithStatus(w, fmt.Sprintf("Failed to format results: %v", err), "", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, content)
}

// handleRestore re-hydrates an exported template into a fresh invoice.
func (ws *WebServer) handleRestore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ws.maxUpload+formOverhead)
	data, err := invoice.DecodeTemplate(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, RestoreResponse{Error: fmt.Sprintf("Invalid template: %v", err)})
		return
	}
	inv := ws.importer.RestoreTemplate(invoice.New(ws.defaultCurrency), data)
	writeJSON(w, http.StatusOK, RestoreResponse{
		Success:     true,
		Invoice:     &inv,
		Logo:        data.Logo,
		Attachments: data.Attachments,
	})
}

func (ws *WebServer) currentInvoice(raw string) (invoice.Invoice, error) {
	base := invoice.New(ws.defaultCurrency)
	if strings.TrimSpace(raw) == "" {
		return base, nil
	}
	data, err := invoice.DecodeTemplate(strings.NewReader(raw))
	if err != nil {
		return base, err
	}
	return ws.importer.RestoreTemplate(base, data), nil
}

// readSource loads an uploaded part. Parts without a useful content type
// and without an extension are sniffed.
func readSource(file multipart.File, header *multipart.FileHeader) (preprocessors.Source, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return preprocessors.Source{}, err
	}
	src := preprocessors.Source{
		Name:     filepath.Base(header.Filename),
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	}
	if src.Ext() == "" && (src.MIMEType == "" || src.BaseMIMEType() == "application/octet-stream") {
		src.MIMEType = http.DetectContentType(data)
	}
	return src, nil
}

func userMessage(err error) string {
	var extractionErr *preprocessors.ExtractionError
	if errors.As(err, &extractionErr) {
		return extractionErr.UserMessage()
	}
	return err.Error()
}

func statusFor(errType preprocessors.ErrorType) int {
	switch errType {
	case preprocessors.ErrorTypeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case preprocessors.ErrorTypeFileSize:
		return http.StatusRequestEntityTooLarge
	case preprocessors.ErrorTypeEmptyExtraction, preprocessors.ErrorTypeNotInterpreted:
		return http.StatusUnprocessableEntity
	case preprocessors.ErrorTypeCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (ws *WebServer) sendError(w http.ResponseWriter, message string) {
	ws.sendErrorWithStatus(w, message, "", http.StatusBadRequest)
}

// sendErrorWithStatus sends an error response with a specific HTTP status code
func (ws *WebServer) sendErrorWithStatus(w http.ResponseWriter, message, errType string, statusCode int) {
	writeJSON(w, statusCode, ImportResponse{
		Success:   false,
		Error:     ws.enhanceErrorMessage(message, preprocessors.ErrorType(errType)),
		ErrorType: errType,
	})
}

// enhanceErrorMessage adds troubleshooting information to error messages
func (ws *WebServer) enhanceErrorMessage(message string, errType preprocessors.ErrorType) string {
	switch {
	case strings.Contains(message, "Failed to parse form data"):
		return message + "\nTroubleshooting: Upload the file as multipart/form-data in the 'file' field"
	case strings.Contains(message, "No file uploaded"):
		return message + "\nTroubleshooting: Select a file before importing"
	case errType == preprocessors.ErrorTypeUnsupportedFormat:
		return message + "\nTroubleshooting: Supported files are " + strings.Join(ws.importer.SupportedExtensions(), ", ") + " and text/* types"
	case errType == preprocessors.ErrorTypeFileSize:
		return message + "\nTroubleshooting: Split the document or raise import.max_file_size"
	default:
		return message
	}
}

// sanitizeUserInput removes dangerous characters from user input for safe output
func sanitizeUserInput(input string, maxLength int) string {
	sanitized := strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		switch r {
		case '<', '>', '"', '\'', '&':
			return -1
		}
		return r
	}, input)

	if utf8.RuneCountInString(sanitized) > maxLength {
		sanitized = string([]rune(sanitized)[:maxLength]) + "..."
	}
	return sanitized
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
