package api

import (
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
	"github.com/FocuswithJustin/JuniperMARC/core/marc"
	"github.com/FocuswithJustin/JuniperMARC/internal/convert"
	"github.com/FocuswithJustin/JuniperMARC/internal/index"
)

// Version is the API version reported by / and /health.
const Version = "0.3.0"

// maxRequestBody caps conversion payloads at 32 MiB.
const maxRequestBody = 32 << 20

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ConvertRequest is the request body for conversion. Data is base64 in
// JSON, which keeps binary MARC payloads intact.
type ConvertRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Encoding string `json:"encoding,omitempty"` // binary MARC output: "utf8" (default) or "marc8"
	Data     []byte `json:"data"`
}

// ConvertResult is the result of a conversion.
type ConvertResult struct {
	Data     []byte `json:"data"`
	Records  int    `json:"records"`
	Duration string `json:"duration"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Driver  string `json:"driver,omitempty"`
	Indexed int    `json:"indexed,omitempty"`
}

var startTime = time.Now()

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "JuniperMARC API",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"POST /convert",
			"GET /search",
			"WS /ws",
			"POST /jobs",
			"GET /jobs/:id",
			"DELETE /jobs/:id",
		},
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	info := HealthInfo{
		Status:  "ok",
		Version: Version,
		Uptime:  time.Since(startTime).Round(time.Second).String(),
	}
	if serverIndex != nil {
		info.Driver = index.DriverType()
		if n, err := serverIndex.Count(r.Context()); err == nil {
			info.Indexed = n
		}
	}
	respond(w, http.StatusOK, info)
}

// handleConvert handles POST /convert - synchronous conversion.
func handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	var req ConvertRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	result, err := runConvert(req, nil)
	if err != nil {
		respondConvertError(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

// runConvert performs one conversion. progress, when non-nil, receives
// percentage callbacks for job reporting.
func runConvert(req ConvertRequest, progress func(int)) (*ConvertResult, error) {
	start := time.Now()

	from, err := convert.ParseFormat(req.From)
	if err != nil {
		return nil, err
	}
	to, err := convert.ParseFormat(req.To)
	if err != nil {
		return nil, err
	}
	encoding := marc.EncodingUTF8
	switch req.Encoding {
	case "", "utf8", "utf-8":
	case "marc8":
		encoding = marc.EncodingMARC8
	default:
		return nil, errors.NewValidation("encoding", "unknown encoding "+req.Encoding)
	}
	if len(req.Data) == 0 {
		return nil, errors.NewValidation("data", "data is required")
	}

	if progress != nil {
		progress(25)
	}
	records, err := convert.Decode(req.Data, from)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(60)
	}
	out, err := convert.Encode(records, to, encoding)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(95)
	}

	return &ConvertResult{
		Data:     out,
		Records:  len(records),
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}, nil
}

// respondConvertError maps conversion failures to HTTP statuses.
func respondConvertError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrUnsupported):
		respondError(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", err.Error())
	case errors.Is(err, errors.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, errors.ErrFormat):
		respondError(w, http.StatusUnprocessableEntity, "MALFORMED_RECORDS", err.Error())
	case errors.Is(err, errors.ErrEncoding):
		respondError(w, http.StatusUnprocessableEntity, "ENCODING_FAILURE", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "CONVERT_FAILED", err.Error())
	}
}

// handleSearch handles GET /search over the configured catalog.
func handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	if serverIndex == nil {
		respondError(w, http.StatusServiceUnavailable, "NO_CATALOG", "Server started without a catalog")
		return
	}

	params := r.URL.Query()
	q := index.Query{
		ControlNumber: params.Get("control_number"),
		Title:         params.Get("title"),
		Author:        params.Get("author"),
		ISBN:          params.Get("isbn"),
		ISSN:          params.Get("issn"),
		PubYear:       params.Get("pub_year"),
	}
	if limit := params.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return
		}
		q.Limit = n
	}

	entries, err := serverIndex.Search(r.Context(), q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SEARCH_FAILED", err.Error())
		return
	}
	respondWithTotal(w, http.StatusOK, entries, len(entries))
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondWithTotal(w http.ResponseWriter, status int, data interface{}, total int) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
