package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seriaati/hoyo-gacha-backend/internal/catalog"
	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
	"github.com/seriaati/hoyo-gacha-backend/internal/parse"
	"github.com/seriaati/hoyo-gacha-backend/internal/services"
)

// multipartFile builds a multipart body carrying one "file" part.
func multipartFile(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestImportGacha_Success(t *testing.T) {
	importSvc := &fakeImportSvc{result: &services.ImportResult{Total: 120, NewRecords: 20, Source: parse.SourceSRGF}}
	r := newTestRouter(New(&fakeAccountSvc{account: linkedAccount()}, importSvc, nil, nil, nil))

	body, contentType := multipartFile(t, "warps.json", `{"info":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/accounts/"+testAccountID+"/gacha/import?source=srgf", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	if importSvc.gotSource != parse.SourceSRGF || importSvc.gotFilename != "warps.json" {
		t.Fatalf("service args wrong: source=%q filename=%q", importSvc.gotSource, importSvc.gotFilename)
	}
	if string(importSvc.gotData) != `{"info":{}}` {
		t.Fatalf("file bytes not passed through: %q", importSvc.gotData)
	}

	var res services.ImportResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil || res.NewRecords != 20 || res.Total != 120 {
		t.Fatalf("body wrong: %s err=%v", w.Body.String(), err)
	}
	if w.Header().Get("Idempotency-Replayed") != "" {
		t.Fatalf("no idempotency key was sent, replay header must be absent")
	}
}

func TestImportGacha_SourceValidation(t *testing.T) {
	r := newTestRouter(New(&fakeAccountSvc{account: linkedAccount()}, &fakeImportSvc{}, nil, nil, nil))

	for _, target := range []string{
		"/accounts/" + testAccountID + "/gacha/import",
		"/accounts/" + testAccountID + "/gacha/import?source=excel",
	} {
		body, contentType := multipartFile(t, "warps.json", "{}")
		req := httptest.NewRequest(http.MethodPost, target, body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", target, w.Code)
		}
	}

	// Source is case-insensitive.
	importSvc := &fakeImportSvc{result: &services.ImportResult{}}
	r = newTestRouter(New(&fakeAccountSvc{account: linkedAccount()}, importSvc, nil, nil, nil))
	body, contentType := multipartFile(t, "warps.json", "{}")
	req := httptest.NewRequest(http.MethodPost, "/accounts/"+testAccountID+"/gacha/import?source=SRGF", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || importSvc.gotSource != parse.SourceSRGF {
		t.Fatalf("uppercase source: status=%d source=%q", w.Code, importSvc.gotSource)
	}
}

func TestImportGacha_FileRequired(t *testing.T) {
	r := newTestRouter(New(&fakeAccountSvc{account: linkedAccount()}, &fakeImportSvc{}, nil, nil, nil))
	req := httptest.NewRequest(http.MethodPost, "/accounts/"+testAccountID+"/gacha/import?source=srgf", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestImportGacha_ErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{parse.ErrInvalidFileExtension, http.StatusBadRequest, ErrCodeBadRequest},
		{parse.ErrAccountGameMismatch, http.StatusBadRequest, ErrCodeBadRequest},
		{parse.ErrUIDMismatch, http.StatusBadRequest, ErrCodeBadRequest},
		{parse.ErrNoGachaLogFound, http.StatusBadRequest, ErrCodeBadRequest},
		{parse.ErrUnrecognizedSchemaVersion, http.StatusBadRequest, ErrCodeBadRequest},
		{parse.ErrMalformedFile, http.StatusBadRequest, ErrCodeBadRequest},
		{services.ErrItemNotInCatalog, http.StatusBadRequest, ErrCodeBadRequest},
		{catalog.ErrUnavailable, http.StatusInternalServerError, ErrCodeImportFailed},
		{catalog.ErrUnsupportedGame, http.StatusInternalServerError, ErrCodeImportFailed},
	}
	for _, tc := range cases {
		r := newTestRouter(New(&fakeAccountSvc{account: linkedAccount()}, &fakeImportSvc{err: tc.err}, nil, nil, nil))
		body, contentType := multipartFile(t, "warps.json", "{}")
		req := httptest.NewRequest(http.MethodPost, "/accounts/"+testAccountID+"/gacha/import?source=srgf", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.wantStatus {
			t.Fatalf("%v: status = %d, want %d (body=%s)", tc.err, w.Code, tc.wantStatus, w.Body.String())
		}
		var resp ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Code != tc.wantCode {
			t.Fatalf("%v: envelope wrong: %s", tc.err, w.Body.String())
		}
	}
}

func TestListGacha_PaginationMath(t *testing.T) {
	historySvc := &fakeHistorySvc{items: []domain.GachaRecord{{WishID: 9, Rarity: 5}}, total: 45}
	r := newTestRouter(New(&fakeAccountSvc{account: linkedAccount()}, nil, historySvc, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+testAccountID+"/gacha?page=2&page_size=20&banner_type=11", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	var resp ListGachaResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p := resp.Pagination
	if p.Page != 2 || p.PageSize != 20 || p.Total != 45 || p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("pagination wrong: %+v", p)
	}
	if len(resp.Records) != 1 || resp.Records[0].WishID != 9 {
		t.Fatalf("records wrong: %+v", resp.Records)
	}
}

func TestListGacha_ClampsPageSize(t *testing.T) {
	historySvc := &fakeHistorySvc{total: 10}
	r := newTestRouter(New(&fakeAccountSvc{account: linkedAccount()}, nil, historySvc, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+testAccountID+"/gacha?page_size=9999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp ListGachaResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Pagination.PageSize != 100 {
		t.Fatalf("page size not clamped: %d", resp.Pagination.PageSize)
	}
}

func TestWipeGacha(t *testing.T) {
	historySvc := &fakeHistorySvc{deleted: 321}
	r := newTestRouter(New(&fakeAccountSvc{account: linkedAccount()}, nil, historySvc, nil, nil))

	req := httptest.NewRequest(http.MethodDelete, "/accounts/"+testAccountID+"/gacha", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp WipeGachaResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Deleted != 321 {
		t.Fatalf("body wrong: %s err=%v", w.Body.String(), err)
	}
}

func TestExportGacha_Download(t *testing.T) {
	exportSvc := &fakeExportSvc{data: []byte(`{"info":{"version":"v4.0"}}`)}
	r := newTestRouter(New(&fakeAccountSvc{account: linkedAccount()}, nil, nil, exportSvc, nil))

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+testAccountID+"/gacha/export", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "attachment") || !strings.Contains(cd, "uigf_hsr_800000001.json") {
		t.Fatalf("content disposition wrong: %q", cd)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	if w.Body.String() != `{"info":{"version":"v4.0"}}` {
		t.Fatalf("body wrong: %s", w.Body.String())
	}
}

func TestExportGacha_UnsupportedGame(t *testing.T) {
	exportSvc := &fakeExportSvc{err: services.ErrInvalidGame}
	r := newTestRouter(New(&fakeAccountSvc{account: linkedAccount()}, nil, nil, exportSvc, nil))

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+testAccountID+"/gacha/export", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
