package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/zombor/receipt-render/internal/dataurl"
	"github.com/zombor/receipt-render/internal/imaging"
	"github.com/zombor/receipt-render/internal/receipt"
	"github.com/zombor/receipt-render/internal/storage"
)

const (
	maxBodySize       = int64(10 << 20) // 10MB, enough for an embedded logo
	diagnosticsHeader = "X-Receipt-Diagnostics"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Expose-Headers", diagnosticsHeader+", Content-Disposition")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// decodeReceipt reads the request body, writing a 400 response on failure
func decodeReceipt(w http.ResponseWriter, r *http.Request) (receipt.Receipt, bool) {
	var rc receipt.Receipt
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&rc); err != nil {
		slog.Error("Error decoding receipt", "error", err)
		msg := "Invalid receipt JSON"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "Receipt is too large. Maximum size is 10MB."
		}
		jsonError(w, msg, http.StatusBadRequest)
		return receipt.Receipt{}, false
	}
	return rc, true
}

// requestSink logs diagnostics and counts them for the response header
func requestSink() (*receipt.Collector, receipt.DiagnosticSink) {
	collector := &receipt.Collector{}
	return collector, receipt.Tee{receipt.SlogSink{}, collector}
}

func setDiagnosticsHeader(w http.ResponseWriter, c *receipt.Collector) {
	w.Header().Set(diagnosticsHeader, strconv.Itoa(len(c.Diagnostics())))
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// handleRenderText renders the posted receipt as plain text
func (s *Server) handleRenderText(w http.ResponseWriter, r *http.Request) {
	rc, ok := decodeReceipt(w, r)
	if !ok {
		return
	}

	collector, sink := requestSink()
	text := receipt.NewTextRenderer(s.deps.Defaults, sink).Render(rc)

	setCORSHeaders(w)
	setDiagnosticsHeader(w, collector)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, text)
}

// handleRenderImage renders the posted receipt as a PNG. With embed=true the
// data URL is returned as JSON, otherwise the PNG is sent as a download.
// persist=true stores the input under receipt.StorageKey first.
func (s *Server) handleRenderImage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	embed := parseBool(query.Get("embed"))
	persist := parseBool(query.Get("persist"))
	if persist && s.deps.Store == nil {
		jsonError(w, "Persistence is not configured", http.StatusBadRequest)
		return
	}

	rc, ok := decodeReceipt(w, r)
	if !ok {
		return
	}
	if rc.QRCode != nil && rc.QRCode.Size > imaging.MaxQRSize {
		jsonError(w, fmt.Sprintf("QR code size must be at most %d", imaging.MaxQRSize), http.StatusBadRequest)
		return
	}

	collector, sink := requestSink()
	renderer := receipt.NewImageRendererWithDeps(s.deps.Surfaces, s.deps.Images, s.deps.QR, sink, s.deps.Defaults)
	out := receipt.PageOutput{
		Store:    s.deps.Store,
		Download: &download{w: w, collector: collector},
		Embed:    embed,
		Persist:  persist,
	}

	result, err := renderer.RenderTo(r.Context(), rc, out)
	if err != nil {
		slog.Error("Error rendering receipt image", "error", err)
		msg := "Error rendering receipt"
		var stageErr *receipt.StageError
		if errors.As(err, &stageErr) {
			msg = fmt.Sprintf("Error rendering receipt: %s failed", stageErr.Stage)
		}
		jsonError(w, msg, http.StatusInternalServerError)
		return
	}
	if !embed {
		return // download already written
	}

	setCORSHeaders(w)
	setDiagnosticsHeader(w, collector)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"data_url": result.DataURL}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleLastReceipt returns the most recently persisted receipt input
func (s *Server) handleLastReceipt(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		corsError(w, "Persistence is not configured", http.StatusNotFound)
		return
	}
	data, err := s.deps.Store.Get(r.Context(), receipt.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		corsError(w, "No receipt saved", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Error reading saved receipt", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// download answers the request with the image as an attachment
type download struct {
	w         http.ResponseWriter
	collector *receipt.Collector
}

// SaveAs implements receipt.Downloader
func (d *download) SaveAs(_ context.Context, url, filename string) error {
	mimeType, data, err := dataurl.Decode(url)
	if err != nil {
		return fmt.Errorf("decoding data url: %w", err)
	}
	setCORSHeaders(d.w)
	setDiagnosticsHeader(d.w, d.collector)
	d.w.Header().Set("Content-Type", mimeType)
	d.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	d.w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := d.w.Write(data); err != nil {
		return fmt.Errorf("writing download: %w", err)
	}
	return nil
}
