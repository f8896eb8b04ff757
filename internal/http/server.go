package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/renovation-advisor/internal/domain"
	"github.com/denisok6893-rgb/renovation-advisor/internal/leads"
	"github.com/denisok6893-rgb/renovation-advisor/internal/recommend"
	"github.com/denisok6893-rgb/renovation-advisor/internal/storage"
)

const maxBodyBytes = 1 << 20

type Recommender interface {
	Recommend(record []byte, overrides domain.FormOverrides, requestedCount int) recommend.Result
}

type LeadService interface {
	Submit(ctx context.Context, sub leads.Submission) (domain.Lead, error)
	Update(ctx context.Context, id string, sub leads.Submission) (domain.Lead, error)
	Get(ctx context.Context, id string) (domain.Lead, error)
	List(ctx context.Context, p storage.ListParams) ([]domain.Lead, int, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type Server struct {
	Engine   Recommender
	Leads    LeadService
	Logger   *zap.Logger
	Limiter  *RateLimiter // optional
	validate *validator.Validate
	deps     map[string]Pinger
}

func NewServer(engine Recommender, leadSvc LeadService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Engine:   engine,
		Leads:    leadSvc,
		Logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		deps:     map[string]Pinger{},
	}
}

// AddDependency registers a dependency checked by /health.
func (s *Server) AddDependency(name string, p Pinger) {
	s.deps[name] = p
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/recommendations", s.handleRecommendations)
	mux.HandleFunc("/leads", s.handleLeads)
	mux.HandleFunc("/leads/", s.handleLeadByID)

	var h http.Handler = mux
	if s.Limiter != nil {
		h = RateLimitMiddleware(s.Limiter, h)
	}
	return LoggingMiddleware(s.Logger, h)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	failed := s.checkDependencies(r)
	total, err := s.Leads.Count(r.Context())
	if err != nil {
		failed["leads"] = err.Error()
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "leads": total})
}

// ---- Recommendations ----

type OverridesRequest struct {
	SquareFootage  *int     `json:"square_footage" validate:"omitempty,gt=0,lte=100000"`
	Bedrooms       *int     `json:"bedrooms" validate:"omitempty,gt=0,lte=50"`
	Bathrooms      *float64 `json:"bathrooms" validate:"omitempty,gt=0,lte=50"`
	EstimatedValue *float64 `json:"estimated_value" validate:"omitempty,gt=0"`
}

func (o *OverridesRequest) toDomain(address string) domain.FormOverrides {
	out := domain.FormOverrides{Address: address}
	if o == nil {
		return out
	}
	out.SquareFootage = o.SquareFootage
	out.Bedrooms = o.Bedrooms
	out.Bathrooms = o.Bathrooms
	out.EstimatedValue = o.EstimatedValue
	return out
}

type ContactRequest struct {
	Name  string `json:"name" validate:"max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"max=40"`
}

func (c *ContactRequest) toDomain() *domain.Contact {
	if c == nil {
		return nil
	}
	return &domain.Contact{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}

type RecommendationRequest struct {
	Address   string            `json:"address" validate:"max=300"`
	Record    json.RawMessage   `json:"record"`
	Overrides *OverridesRequest `json:"overrides"`
	Count     int               `json:"count" validate:"gte=0,lte=12"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RecommendationRequest
	if !s.decode(w, r, &req) {
		return
	}

	res := s.Engine.Recommend(req.Record, req.Overrides.toDomain(req.Address), req.Count)
	writeJSON(w, http.StatusOK, res)
}

// ---- Leads ----

type LeadCreateRequest struct {
	Address string            `json:"address" validate:"required,min=3,max=300"`
	Details *OverridesRequest `json:"details"`
	Contact *ContactRequest   `json:"contact"`
	Count   int               `json:"count" validate:"gte=0,lte=12"`
}

type LeadUpdateRequest struct {
	Address string            `json:"address" validate:"omitempty,min=3,max=300"`
	Step    string            `json:"step" validate:"omitempty,oneof=address details contact"`
	Details *OverridesRequest `json:"details"`
	Contact *ContactRequest   `json:"contact"`
	Count   int               `json:"count" validate:"gte=0,lte=12"`
}

type LeadsListResponse struct {
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Total  int           `json:"total"`
	Items  []domain.Lead `json:"items"`
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleLeadCreate(w, r)
	case http.MethodGet:
		s.handleLeadsList(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLeadCreate(w http.ResponseWriter, r *http.Request) {
	var req LeadCreateRequest
	if !s.decode(w, r, &req) {
		return
	}

	lead, err := s.Leads.Submit(r.Context(), leads.Submission{
		Address:   req.Address,
		Overrides: req.Details.toDomain(""),
		Contact:   req.Contact.toDomain(),
		Count:     req.Count,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (s *Server) handleLeadsList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 20, 0)
	step := domain.LeadStep(strings.TrimSpace(r.URL.Query().Get("step")))

	items, total, err := s.Leads.List(r.Context(), storage.ListParams{Limit: limit, Offset: offset, Step: step})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LeadsListResponse{
		Limit:  limit,
		Offset: offset,
		Total:  total,
		Items:  items,
	})
}

func (s *Server) handleLeadByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(r.URL.Path[len("/leads/"):], "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "missing_id", "lead id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		lead, err := s.Leads.Get(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lead)

	case http.MethodPatch:
		var req LeadUpdateRequest
		if !s.decode(w, r, &req) {
			return
		}
		lead, err := s.Leads.Update(r.Context(), id, leads.Submission{
			Address:   req.Address,
			Overrides: req.Details.toDomain(""),
			Contact:   req.Contact.toDomain(),
			Step:      domain.LeadStep(req.Step),
			Count:     req.Count,
		})
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lead)

	case http.MethodDelete:
		if err := s.Leads.Delete(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation_failed",
				"fields": fieldErrors(verrs),
			})
			return false
		}
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Namespace()] = fe.Tag()
	}
	return out
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, leads.ErrInvalid):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, leads.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "lead not found")
	default:
		s.Logger.Error("lead request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func parseLimitOffset(r *http.Request, defLimit, defOffset int) (int, int) {
	q := r.URL.Query()

	limit := defLimit
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defLimit
	}
	// safety cap
	if limit > 200 {
		limit = 200
	}

	offset := defOffset
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = defOffset
	}

	return limit, offset
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
