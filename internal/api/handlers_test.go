package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/FocuswithJustin/JuniperMARC/core/marc"
	"github.com/FocuswithJustin/JuniperMARC/internal/index"
)

func marshalBinary(t *testing.T, records ...*marc.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := marc.NewWriter(&buf, marc.EncodingUTF8)
	for _, r := range records {
		if err := w.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func apiRecord(t *testing.T, controlNumber, title string) *marc.Record {
	t.Helper()
	r := marc.NewRecord()
	ctrl, err := marc.NewControlField("001", controlNumber)
	if err != nil {
		t.Fatal(err)
	}
	titleField, err := marc.NewDataField("245", '1', '0', marc.Subfield{Code: 'a', Value: title})
	if err != nil {
		t.Fatal(err)
	}
	r.AddField(ctrl, titleField)
	return r
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, path string, body interface{}) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	handler(w, req)

	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, w.Body.String())
	}
	return w, resp
}

func TestHandleRoot(t *testing.T) {
	w, resp := doJSON(t, handleRoot, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("root = %d, success %v", w.Code, resp.Success)
	}

	w, resp = doJSON(t, handleRoot, http.MethodGet, "/nope", nil)
	if w.Code != http.StatusNotFound || resp.Success {
		t.Errorf("unknown path = %d", w.Code)
	}
	if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestHandleHealth(t *testing.T) {
	w, resp := doJSON(t, handleHealth, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("health = %d", w.Code)
	}

	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	var info HealthInfo
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatal(err)
	}
	if info.Status != "ok" || info.Version != Version {
		t.Errorf("health info = %+v", info)
	}
}

func TestHandleConvert(t *testing.T) {
	payload := marshalBinary(t, apiRecord(t, "id1", "A title"))
	req := ConvertRequest{From: "marc", To: "json", Data: payload}

	w, resp := doJSON(t, handleConvert, http.MethodPost, "/convert", req)
	if w.Code != http.StatusOK {
		t.Fatalf("convert = %d: %s", w.Code, w.Body.String())
	}

	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	var result ConvertResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Records != 1 {
		t.Errorf("records = %d, want 1", result.Records)
	}
	if !strings.Contains(string(result.Data), `{"001":"id1"}`) {
		t.Errorf("converted data = %s", result.Data)
	}
}

func TestHandleConvertErrors(t *testing.T) {
	cases := []struct {
		name    string
		req     ConvertRequest
		code    int
		errCode string
	}{
		{"unknown source format", ConvertRequest{From: "pdf", To: "json", Data: []byte("x")}, http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
		{"unknown encoding", ConvertRequest{From: "mrk", To: "marc", Encoding: "latin1", Data: []byte("x")}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing data", ConvertRequest{From: "marc", To: "json"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"malformed records", ConvertRequest{From: "marc", To: "json", Data: []byte("garbage")}, http.StatusUnprocessableEntity, "MALFORMED_RECORDS"},
	}

	for _, c := range cases {
		w, resp := doJSON(t, handleConvert, http.MethodPost, "/convert", c.req)
		if w.Code != c.code {
			t.Errorf("%s: status = %d, want %d", c.name, w.Code, c.code)
		}
		if resp.Success || resp.Error == nil {
			t.Errorf("%s: expected error response", c.name)
			continue
		}
		if resp.Error.Code != c.errCode {
			t.Errorf("%s: error code = %s, want %s", c.name, resp.Error.Code, c.errCode)
		}
	}

	// Method and body shape checks.
	w, _ := doJSON(t, handleConvert, http.MethodGet, "/convert", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /convert = %d", w.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	ix, err := index.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ix.Close()
	if _, err := ix.Add(context.Background(), apiRecord(t, "id1", "Searchable title"), "batch.mrc", 0); err != nil {
		t.Fatal(err)
	}

	oldIndex := serverIndex
	serverIndex = ix
	defer func() { serverIndex = oldIndex }()

	w, resp := doJSON(t, handleSearch, http.MethodGet, "/search?title=searchable", nil)
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("search = %d: %s", w.Code, w.Body.String())
	}
	if resp.Meta == nil || resp.Meta.Total != 1 {
		t.Errorf("meta = %+v", resp.Meta)
	}

	w, _ = doJSON(t, handleSearch, http.MethodGet, "/search?limit=frog", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d", w.Code)
	}
}

func TestHandleSearchNoCatalog(t *testing.T) {
	oldIndex := serverIndex
	serverIndex = nil
	defer func() { serverIndex = oldIndex }()

	w, resp := doJSON(t, handleSearch, http.MethodGet, "/search?title=x", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("search without catalog = %d", w.Code)
	}
	if resp.Error == nil || resp.Error.Code != "NO_CATALOG" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestCORSMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Permissive mode mirrors any origin as a wildcard.
	handler := corsMiddleware(nil, inner)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("permissive origin = %q", got)
	}

	// Restricted mode echoes only allowed origins.
	handler = corsMiddleware([]string{"http://allowed.test"}, inner)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://denied.test")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("denied origin header = %q", got)
	}

	req.Header.Set("Origin", "http://allowed.test")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://allowed.test" {
		t.Errorf("allowed origin = %q", got)
	}

	// Preflight requests short-circuit.
	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight = %d", w.Code)
	}
}
