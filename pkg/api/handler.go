package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/hazyhaar/agrocota/pkg/kit"
	"github.com/hazyhaar/agrocota/pkg/quote"
	"github.com/hazyhaar/agrocota/pkg/sheet"
	"github.com/hazyhaar/agrocota/pkg/store"
)

// NewRouter returns an http.Handler with all agrocota API routes.
func NewRouter(s *Service) http.Handler {
	mux := http.NewServeMux()
	h := &handler{svc: s}

	mux.HandleFunc("POST /v1/ingest", h.handleIngest)
	mux.HandleFunc("POST /v1/columns", h.handleColumns)
	mux.HandleFunc("POST /v1/classify", h.handleClassify)
	mux.HandleFunc("POST /v1/quotations", h.handleCreateQuotation)
	mux.HandleFunc("GET /v1/quotations", h.handleListQuotations)
	mux.HandleFunc("GET /v1/quotations/{id}", h.handleGetQuotation)
	mux.HandleFunc("DELETE /v1/quotations/{id}", h.handleDeleteQuotation)
	mux.HandleFunc("POST /v1/quotations/{id}/share", h.handleShareQuotation)
	mux.HandleFunc("GET /v1/share/{token}", h.handleGetShared)
	mux.HandleFunc("POST /v1/share/{token}/decision", h.handleDecision)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return cors(requestID(mux))
}

type handler struct {
	svc *Service
}

// --- engine ---

func (h *handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.svc.maxUpload)
	var req ingestGridReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.serve(w, r, h.svc.ingestGrid, &req, http.StatusOK)
}

func (h *handler) handleColumns(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	var req columnsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.serve(w, r, h.svc.detectColumns, &req, http.StatusOK)
}

func (h *handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	var req classifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.serve(w, r, h.svc.classify, &req, http.StatusOK)
}

// --- quotations ---

func (h *handler) handleCreateQuotation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.svc.maxUpload)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errMissingFile.Error())
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	opts := sheet.Options{
		Encoding: r.FormValue("encoding"),
		Sheet:    r.FormValue("sheet"),
	}
	if d := r.FormValue("delimiter"); d != "" {
		opts.Delimiter, _ = utf8.DecodeRuneInString(d)
	}

	h.serve(w, r, h.svc.createQuotation, &createQuotationReq{
		Title:    r.FormValue("title"),
		Notes:    r.FormValue("notes"),
		FileName: header.Filename,
		Data:     data,
		Options:  opts,
	}, http.StatusCreated)
}

func (h *handler) handleListQuotations(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.listQuotations, nil, http.StatusOK)
}

func (h *handler) handleGetQuotation(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.getQuotation, &quotationIDReq{ID: r.PathValue("id")}, http.StatusOK)
}

func (h *handler) handleDeleteQuotation(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.deleteQuotation(r.Context(), &quotationIDReq{ID: r.PathValue("id")}); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleShareQuotation(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.shareQuotation, &quotationIDReq{ID: r.PathValue("id")}, http.StatusOK)
}

// --- producer share link ---

func (h *handler) handleGetShared(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.getShared, &tokenReq{Token: r.PathValue("token")}, http.StatusOK)
}

type httpDecisionRequest struct {
	Approved *bool `json:"approved"`
}

func (h *handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4*1024)
	var req httpDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Approved == nil {
		writeError(w, http.StatusBadRequest, `body must be {"approved": true|false}`)
		return
	}
	h.serve(w, r, h.svc.decide, &decisionReq{Token: r.PathValue("token"), Approved: *req.Approved}, http.StatusOK)
}

// --- health ---

type healthResponse struct {
	Status     string          `json:"status"`
	Vocabulary quote.VocabInfo `json:"vocabulary"`
	Store      string          `json:"store"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Vocabulary: h.svc.vocab.Info(), Store: "ok"}
	code := http.StatusOK
	if h.svc.store == nil {
		resp.Store = "disabled"
	} else if err := h.svc.store.Ping(r.Context()); err != nil {
		resp.Status, resp.Store = "degraded", err.Error()
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// --- helpers ---

// serve runs ep and writes its response with code, or the error mapped to
// an HTTP status.
func (h *handler) serve(w http.ResponseWriter, r *http.Request, ep kit.Endpoint, req any, code int) {
	resp, err := ep(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, code, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrNoStore):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrNoValidRows):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrTitleRequired),
		errors.Is(err, store.ErrNoItems),
		errors.Is(err, errMissingFile),
		errors.Is(err, errTooManyRows),
		errors.Is(err, sheet.ErrEmptyFile),
		errors.Is(err, sheet.ErrUnknownFormat),
		errors.Is(err, sheet.ErrUnreadable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// requestID tags each request with an id (X-Request-ID when the client sent
// one) and the "http" transport.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = kit.NewRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := kit.WithRequestID(kit.WithTransport(r.Context(), kit.TransportHTTP), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
