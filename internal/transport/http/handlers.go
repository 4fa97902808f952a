package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medivault/internal/access"
	"medivault/internal/audit"
	"medivault/internal/auth"
	"medivault/internal/consent"
	"medivault/internal/retention"
	id "medivault/pkg/domain"
	dErrors "medivault/pkg/domain-errors"
	"medivault/pkg/requestcontext"
)

// Handler is the thin HTTP layer. It decodes requests, delegates to the core
// services, and encodes results; every invariant lives below it.
type Handler struct {
	logger    *slog.Logger
	authSvc   *auth.Service
	gate      *consent.Gate
	accessSvc *access.Service
	reporter  *retention.Reporter
}

func NewHandler(logger *slog.Logger, authSvc *auth.Service, gate *consent.Gate,
	accessSvc *access.Service, reporter *retention.Reporter) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		authSvc:   authSvc,
		gate:      gate,
		accessSvc: accessSvc,
		reporter:  reporter,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return
	}
	result, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		Role:      result.Role.String(),
		SessionID: result.SessionID.String(),
	})
}

type consentResponse struct {
	State     string    `json:"state"`
	DecidedAt time.Time `json:"decided_at"`
}

func (h *Handler) consentTransition(transition func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := transition(r); err != nil {
			writeError(w, err)
			return
		}
		decision, err := h.gate.State(r.Context(), requestcontext.SessionID(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, consentResponse{
			State:     string(decision.State),
			DecidedAt: decision.DecidedAt,
		})
	}
}

type createRecordRequest struct {
	Name          string `json:"name"`
	Contact       string `json:"contact"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	DateOfBirth   string `json:"date_of_birth"`
	BloodGroup    string `json:"blood_group"`
	Diagnosis     string `json:"diagnosis"`
	ConsentGiven  bool   `json:"consent_given"`
	RetentionDays int    `json:"retention_days"`
}

func (h *Handler) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return
	}
	recordID, err := h.accessSvc.CreateRecord(r.Context(), access.CreateRecordInput{
		Name:          req.Name,
		Contact:       req.Contact,
		Email:         req.Email,
		Address:       req.Address,
		DateOfBirth:   req.DateOfBirth,
		BloodGroup:    req.BloodGroup,
		Diagnosis:     req.Diagnosis,
		ConsentGiven:  req.ConsentGiven,
		RetentionDays: req.RetentionDays,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"record_id": recordID.String()})
}

func (h *Handler) handleViewRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, err)
		return
	}
	rendered, err := h.accessSvc.ViewRecord(r.Context(), recordID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	rendered, err := h.accessSvc.ListRecords(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

type updateRecordRequest struct {
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`
	DateOfBirth string `json:"date_of_birth"`
}

func (h *Handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return
	}
	err = h.accessSvc.UpdateRecord(r.Context(), recordID, access.UpdateRecordInput{
		Name:        req.Name,
		Contact:     req.Contact,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAnonymizeRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.accessSvc.AnonymizeRecord(r.Context(), recordID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportRecords(w http.ResponseWriter, r *http.Request) {
	payload, err := h.accessSvc.ExportRecords(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="records_export.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handler) handleRetentionReport(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reporter.Report(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	filter := audit.Filter{Limit: 100}
	q := r.URL.Query()
	if raw := q.Get("action"); raw != "" {
		action := audit.Action(raw)
		filter.Action = &action
	}
	if raw := q.Get("actor_id"); raw != "" {
		actorID, err := id.ParseActorID(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.ActorID = &actorID
	}
	if raw := q.Get("target_id"); raw != "" {
		targetID, err := id.ParseRecordID(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.TargetID = &targetID
	}
	entries, err := h.accessSvc.AuditTrail(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
