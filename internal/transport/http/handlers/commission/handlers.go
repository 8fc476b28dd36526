package commissionhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"printerp/internal/domain/audit"
	"printerp/internal/domain/auth"
	"printerp/internal/domain/commission"
	"printerp/internal/domain/statements"
	"printerp/internal/platform/jobs"
	"printerp/internal/transport/http/api"
	"printerp/internal/transport/http/middleware"
	"printerp/internal/transport/http/shared"
)

type Auditor interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type JobRunner interface {
	RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error)
}

type Handler struct {
	Service     *commission.Service
	Directory   commission.EmployeeDirectory
	Jobs        JobRunner
	Runs        jobs.RunLister
	Perms       middleware.PermissionStore
	Audit       Auditor
	Idempotency middleware.IdempotencyStore
	CompanyName string
	Now         func() time.Time
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermCommissionRead, h.Perms)
	run := middleware.RequirePermission(auth.PermCommissionRun, h.Perms)
	configure := middleware.RequirePermission(auth.PermCommissionConfigure, h.Perms)

	r.Route("/commissions", func(r chi.Router) {
		r.With(read).Post("/calculations", h.handleCalculate)
		r.With(run, middleware.Idempotent(h.Idempotency)).Post("/bulk", h.handleBulk)
		r.With(run).Get("/runs", h.handleListRuns)
		r.With(read).Post("/projections", h.handleProject)
		r.With(configure).Post("/structures/validate", h.handleValidateStructure)
		r.With(read).Get("/employees/{employeeID}/statement", h.handleStatement)
	})
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EmployeeID  string      `json:"employeeId"`
		Period      string      `json:"period"`
		Bonuses     json.Number `json:"bonuses"`
		Deductions  json.Number `json:"deductions"`
		Adjustments json.Number `json:"adjustments"`
	}
	if !api.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	period, _ := v.Period("period", payload.Period)
	adj := commission.Adjustments{
		Bonuses:     v.Amount("bonuses", payload.Bonuses.String()),
		Deductions:  v.Amount("deductions", payload.Deductions.String()),
		Adjustments: v.Amount("adjustments", payload.Adjustments.String()),
	}
	v.NonNegative("bonuses", adj.Bonuses)
	v.NonNegative("deductions", adj.Deductions)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if !middleware.AuthorizeEmployee(w, r, payload.EmployeeID) {
		return
	}

	result := h.Service.Calculate(r.Context(), payload.EmployeeID, period, adj)
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		Period string `json:"period"`
	}
	if !api.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}
	v := shared.NewValidator()
	period, _ := v.Period("period", payload.Period)
	if v.Reject(w, requestID) {
		return
	}

	var bulk commission.Bulk
	details, err := h.Jobs.RunNow(r.Context(), jobs.JobCommissionBulk, func(ctx context.Context) (any, error) {
		bulk = h.Service.CalculateBulk(ctx, period)
		return bulk.Totals(), nil
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "bulk_failed", "bulk commission run failed", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    user.UserID,
		Action:     audit.ActionCommissionBulkRun,
		EntityType: audit.EntityCommissionPeriod,
		EntityID:   period,
		RequestID:  requestID,
		IP:         clientIP(r),
		After:      details,
	}); err != nil {
		slog.Warn("audit record failed", "action", audit.ActionCommissionBulkRun, "err", err)
	}
	api.Success(w, bulk, requestID)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	page := v.Page(r, 20, 100)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	runs, err := h.Runs.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "run_list_failed", "failed to list job runs", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProject(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EmployeeID     string      `json:"employeeId"`
		CurrentPeriod  string      `json:"currentPeriod"`
		ProjectedSales json.Number `json:"projectedSales"`
	}
	if !api.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("projectedSales", payload.ProjectedSales.String(), "is required")
	period, _ := v.Period("currentPeriod", payload.CurrentPeriod)
	sales := v.Amount("projectedSales", payload.ProjectedSales.String())
	v.NonNegative("projectedSales", sales)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if !middleware.AuthorizeEmployee(w, r, payload.EmployeeID) {
		return
	}

	result := h.Service.Project(r.Context(), payload.EmployeeID, period, sales)
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleValidateStructure(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var record commission.StructureRecord
	if !api.DecodeJSON(w, r, &record, requestID) {
		return
	}

	result := commission.ValidateRecord(record)

	if err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    user.UserID,
		Action:     audit.ActionCommissionStructureValidated,
		EntityType: audit.EntityCommissionStructure,
		EntityID:   record.Name,
		RequestID:  requestID,
		IP:         clientIP(r),
		Before:     record,
		After:      result,
	}); err != nil {
		slog.Warn("audit record failed", "action", audit.ActionCommissionStructureValidated, "err", err)
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	requestID := middleware.GetRequestID(r.Context())

	v := shared.NewValidator()
	period, _ := v.Period("period", r.URL.Query().Get("period"))
	if v.Reject(w, requestID) {
		return
	}
	if !middleware.AuthorizeEmployee(w, r, employeeID) {
		return
	}

	employee, err := h.Directory.EmployeeByID(r.Context(), employeeID, period)
	if errors.Is(err, commission.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_lookup_failed", "failed to load employee", requestID)
		return
	}

	result := h.Service.Calculate(r.Context(), employeeID, period, commission.Adjustments{})
	var buf bytes.Buffer
	if err := statements.Render(&buf, statements.Statement{
		CompanyName:  h.CompanyName,
		EmployeeName: employee.Name,
		Result:       result,
		GeneratedAt:  h.now(),
	}); err != nil {
		slog.Warn("statement render failed", "employeeId", employeeID, "period", period, "err", err)
		api.Fail(w, http.StatusInternalServerError, "statement_failed", "failed to render statement", requestID)
		return
	}

	api.Attachment(w, "application/pdf", "commission-"+employeeID+"-"+period+".pdf", buf.Bytes())
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
