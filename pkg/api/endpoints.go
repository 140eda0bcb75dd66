package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/agrocota/pkg/kit"
	"github.com/hazyhaar/agrocota/pkg/metrics"
	"github.com/hazyhaar/agrocota/pkg/quote"
	"github.com/hazyhaar/agrocota/pkg/sheet"
	"github.com/hazyhaar/agrocota/pkg/store"
)

var (
	// ErrNoValidRows is returned when a spreadsheet yields no priced item.
	ErrNoValidRows = errors.New("no valid rows found")
	// ErrNoStore is returned by quotation endpoints of a Service built
	// without a store.
	ErrNoStore = errors.New("quotation store not configured")

	errTooManyRows = errors.New("too many rows")
	errMissingFile = errors.New("missing file")
)

// Config wires a Service to its collaborators.
type Config struct {
	Vocab   *quote.Registry
	Store   *store.Store
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	// MaxRows caps the data rows of an uploaded or posted grid (0 = unlimited).
	MaxRows int
	// MaxUploadBytes caps multipart uploads (0 = 32 MiB).
	MaxUploadBytes int64
}

// Service holds the endpoints shared by the HTTP and MCP transports.
type Service struct {
	vocab     *quote.Registry
	store     *store.Store
	metrics   *metrics.Metrics
	logger    *slog.Logger
	maxRows   int
	maxUpload int64

	ingestGrid      kit.Endpoint
	detectColumns   kit.Endpoint
	classify        kit.Endpoint
	createQuotation kit.Endpoint
	listQuotations  kit.Endpoint
	getQuotation    kit.Endpoint
	shareQuotation  kit.Endpoint
	deleteQuotation kit.Endpoint
	getShared       kit.Endpoint
	decide          kit.Endpoint
}

// NewService builds the endpoints, each wrapped with logging. Without a
// Store the engine endpoints still work and quotation endpoints fail with
// ErrNoStore.
func NewService(cfg Config) *Service {
	s := &Service{
		vocab:     cfg.Vocab,
		store:     cfg.Store,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		maxRows:   cfg.MaxRows,
		maxUpload: cfg.MaxUploadBytes,
	}
	if s.vocab == nil {
		s.vocab = quote.NewRegistry("")
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 32 << 20
	}

	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Logging(s.logger, name)(ep)
	}
	s.ingestGrid = wrap("ingest_grid", s.ingestGridEndpoint)
	s.detectColumns = wrap("detect_columns", detectColumnsEndpoint)
	s.classify = wrap("classify_category", s.classifyEndpoint)
	stored := func(name string, ep kit.Endpoint) kit.Endpoint {
		if s.store == nil {
			ep = func(context.Context, any) (any, error) { return nil, ErrNoStore }
		}
		return wrap(name, ep)
	}
	s.createQuotation = stored("create_quotation", s.createQuotationEndpoint)
	s.listQuotations = stored("list_quotations", s.listQuotationsEndpoint)
	s.getQuotation = stored("get_quotation", s.getQuotationEndpoint)
	s.shareQuotation = stored("share_quotation", s.shareQuotationEndpoint)
	s.deleteQuotation = stored("delete_quotation", s.deleteQuotationEndpoint)
	s.getShared = stored("get_shared", s.getSharedEndpoint)
	s.decide = stored("decide", s.decideEndpoint)
	return s
}

// Shared request/response types used by both HTTP and MCP transports.

type ingestGridReq struct {
	Headers []quote.Cell   `json:"headers"`
	Rows    [][]quote.Cell `json:"rows"`
}

type columnsReq struct {
	Headers []quote.Cell `json:"headers"`
}

type classifyReq struct {
	Category string `json:"category"`
	Product  string `json:"product"`
}

type createQuotationReq struct {
	Title    string
	Notes    string
	FileName string
	Data     []byte
	Options  sheet.Options
}

type quotationIDReq struct {
	ID string `json:"id"`
}

type tokenReq struct {
	Token string `json:"token"`
}

type decisionReq struct {
	Token    string
	Approved bool
}

type quotationDetail struct {
	Quotation  *store.Quotation `json:"quotation"`
	Items      []store.LineItem `json:"items"`
	Summary    quote.Summary    `json:"summary"`
	Comparison quote.Comparison `json:"comparison"`
}

type quotationList struct {
	Quotations []store.Quotation `json:"quotations"`
}

type shareResponse struct {
	ID     string       `json:"id"`
	Status store.Status `json:"status"`
	Token  string       `json:"token"`
}

// --- engine endpoints ---

func (s *Service) ingestGridEndpoint(ctx context.Context, request any) (any, error) {
	req := request.(*ingestGridReq)
	if s.maxRows > 0 && len(req.Rows) > s.maxRows {
		return nil, fmt.Errorf("%w: %d (max %d)", errTooManyRows, len(req.Rows), s.maxRows)
	}
	res := s.vocab.Vocabulary().Ingest(quote.RawGrid{Headers: quote.Labels(req.Headers), Rows: req.Rows})
	s.metrics.ObserveIngest(kit.GetTransport(ctx), res)
	return res, nil
}

func detectColumnsEndpoint(_ context.Context, request any) (any, error) {
	req := request.(*columnsReq)
	return quote.DetectColumns(quote.Labels(req.Headers)), nil
}

func (s *Service) classifyEndpoint(_ context.Context, request any) (any, error) {
	req := request.(*classifyReq)
	return s.vocab.Vocabulary().Resolve(req.Category, req.Product), nil
}

// --- quotation endpoints ---

func (s *Service) createQuotationEndpoint(ctx context.Context, request any) (any, error) {
	req := request.(*createQuotationReq)
	if strings.TrimSpace(req.Title) == "" {
		return nil, store.ErrTitleRequired
	}
	if len(req.Data) == 0 {
		return nil, errMissingFile
	}

	opts := req.Options
	opts.MaxRows = s.maxRows
	grid, err := sheet.Read(req.FileName, bytes.NewReader(req.Data), opts)
	if err != nil {
		return nil, err
	}

	res := s.vocab.Vocabulary().Ingest(grid)
	s.metrics.ObserveIngest(kit.GetTransport(ctx), res)
	if len(res.Items) == 0 {
		return nil, ErrNoValidRows
	}

	q, err := s.store.Create(ctx, store.NewQuotation{
		Title:      req.Title,
		Notes:      req.Notes,
		SourceFile: req.FileName,
		Items:      res.Items,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Quotations.Inc()
	s.logger.InfoContext(ctx, "quotation created",
		"id", q.ID, "file", req.FileName, "items", len(res.Items), "dropped", res.RowsDropped)
	return s.detail(ctx, q)
}

func (s *Service) listQuotationsEndpoint(ctx context.Context, _ any) (any, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return quotationList{Quotations: list}, nil
}

func (s *Service) getQuotationEndpoint(ctx context.Context, request any) (any, error) {
	req := request.(*quotationIDReq)
	q, err := s.store.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, q)
}

func (s *Service) shareQuotationEndpoint(ctx context.Context, request any) (any, error) {
	req := request.(*quotationIDReq)
	q, err := s.store.MarkSent(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return shareResponse{ID: q.ID, Status: q.Status, Token: q.ApprovalToken}, nil
}

func (s *Service) deleteQuotationEndpoint(ctx context.Context, request any) (any, error) {
	req := request.(*quotationIDReq)
	if err := s.store.Delete(ctx, req.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) getSharedEndpoint(ctx context.Context, request any) (any, error) {
	req := request.(*tokenReq)
	q, err := s.store.GetByToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, q)
}

func (s *Service) decideEndpoint(ctx context.Context, request any) (any, error) {
	req := request.(*decisionReq)
	q, err := s.store.Decide(ctx, req.Token, req.Approved)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDecision(req.Approved)
	return q, nil
}

// detail loads the items of q and derives its summary and comparison.
func (s *Service) detail(ctx context.Context, q *store.Quotation) (*quotationDetail, error) {
	lines, err := s.store.Items(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	items := make([]quote.Item, len(lines))
	for i, l := range lines {
		items[i] = l.Item
	}
	return &quotationDetail{
		Quotation:  q,
		Items:      lines,
		Summary:    quote.Summarize(items),
		Comparison: quote.Compare(items),
	}, nil
}
