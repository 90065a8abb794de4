package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerline/docflow/internal/application/service"
	"github.com/ledgerline/docflow/internal/domain/entity"
	"github.com/ledgerline/docflow/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine   service.TransitionEngine
	audit    service.AuditService
	resolver service.StatusResolver
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	engine service.TransitionEngine,
	audit service.AuditService,
	resolver service.StatusResolver,
	logger Logger,
) *Handlers {
	return &Handlers{
		engine:   engine,
		audit:    audit,
		resolver: resolver,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// TransitionRequest is the body of POST /documents/:number/transition
type TransitionRequest struct {
	ToStatus string `json:"to_status" binding:"required"`
	Comments string `json:"comments"`
}

// InvalidateCacheRequest optionally scopes invalidation to one type
type InvalidateCacheRequest struct {
	DocumentTypeID *int64 `json:"document_type_id"`
}

// ListAuditRequest represents query parameters for the audit list
type ListAuditRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// statusForCode maps workflow error codes to HTTP status codes
func statusForCode(code workflow.Code) int {
	switch code {
	case workflow.CodeNotFound:
		return http.StatusNotFound
	case workflow.CodePermissionDenied, workflow.CodeApprovalDenied:
		return http.StatusForbidden
	case workflow.CodeConcurrentModification:
		return http.StatusConflict
	case workflow.CodeBusinessRuleViolation:
		return http.StatusUnprocessableEntity
	case workflow.CodePersistenceFailure:
		return http.StatusInternalServerError
	default:
		// Structural and configuration failures are client errors.
		return http.StatusBadRequest
	}
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	code := workflow.CodeOf(err)
	status := statusForCode(code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, Response{
		Success: false,
		Code:    string(code),
		Error:   err.Error(),
	})
}

// actorFromHeaders builds the acting user from request headers. Auth is
// handled upstream; the gateway forwards the resolved identity.
func actorFromHeaders(c *gin.Context) (*entity.Actor, error) {
	id := c.GetHeader("X-Actor-ID")
	if id == "" {
		return nil, fmt.Errorf("missing X-Actor-ID header")
	}
	return &entity.Actor{
		ID:          id,
		Name:        c.GetHeader("X-Actor-Name"),
		Roles:       splitHeader(c.GetHeader("X-Actor-Roles")),
		Permissions: splitHeader(c.GetHeader("X-Actor-Permissions")),
	}, nil
}

func splitHeader(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// Transition handles POST /api/v1/documents/:number/transition
func (h *Handlers) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body: to_status is required",
		})
		return
	}

	actor, err := actorFromHeaders(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	result, err := h.engine.Transition(c.Request.Context(), c.Param("number"), req.ToStatus, actor, req.Comments)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// NextStatuses handles GET /api/v1/documents/:number/next-statuses
func (h *Handlers) NextStatuses(c *gin.Context) {
	next, err := h.engine.NextStatusesByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"next_statuses": next}})
}

// Permissions handles GET /api/v1/documents/:number/permissions
func (h *Handlers) Permissions(c *gin.Context) {
	actor, err := actorFromHeaders(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	summary, err := h.engine.EffectivePermissions(c.Request.Context(), c.Param("number"), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// AuditTrail handles GET /api/v1/documents/:number/audit
func (h *Handlers) AuditTrail(c *gin.Context) {
	entries, err := h.audit.Trail(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ListAudit handles GET /api/v1/audit
func (h *Handlers) ListAudit(c *gin.Context) {
	var req ListAuditRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	entries, err := h.audit.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ExportAudit handles GET /api/v1/audit/export
func (h *Handlers) ExportAudit(c *gin.Context) {
	limit := 10000
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100000 {
			limit = parsed
		}
	}

	data, err := h.audit.ExportXLSX(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("audit-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// InvalidateCache handles POST /api/v1/admin/cache/invalidate
func (h *Handlers) InvalidateCache(c *gin.Context) {
	var req InvalidateCacheRequest
	// An empty body means invalidate everything.
	_ = c.ShouldBindJSON(&req)

	if req.DocumentTypeID != nil {
		h.resolver.Invalidate(*req.DocumentTypeID)
	} else {
		h.resolver.InvalidateAll()
	}

	c.JSON(http.StatusOK, Response{Success: true})
}
