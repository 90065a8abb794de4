package service

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/application/port"
	"github.com/ledgerline/docflow/internal/domain/entity"
	"github.com/ledgerline/docflow/internal/domain/workflow"
)

// StatusResolver answers semantic questions about a document type's
// status configuration. Results are cached per type with a bounded TTL;
// administrative writes must call Invalidate.
//
// "Not found" is never an error here: a type without an initial status
// yields ("", false, nil) and empty role queries yield empty slices.
// Only persistence faults are returned as errors.
type StatusResolver interface {
	Configs(ctx context.Context, documentTypeID int64) ([]*entity.StatusConfig, error)
	Edges(ctx context.Context, documentTypeID int64) ([]*entity.TransitionEdge, error)

	InitialStatus(ctx context.Context, documentTypeID int64) (string, bool, error)
	FinalStatuses(ctx context.Context, documentTypeID int64) ([]string, error)
	CancellationStatus(ctx context.Context, documentTypeID int64) (string, bool, error)
	StatusesInRole(ctx context.Context, documentTypeID int64, role entity.Role) ([]string, error)
	IsStatusInRole(ctx context.Context, documentTypeID int64, status string, role entity.Role) (bool, error)
	StatusesBySemanticType(ctx context.Context, documentTypeID int64, semanticType entity.SemanticType) ([]string, error)

	ConfigFor(ctx context.Context, documentTypeID int64, status string) (*entity.StatusConfig, error)

	Invalidate(documentTypeID int64)
	InvalidateAll()
}

type statusResolver struct {
	configRepo port.StatusConfigRepository
	cache      *gocache.Cache
	logger     *zap.Logger
}

// NewStatusResolver creates a resolver backed by the given repository.
// ttl bounds configuration staleness in this process; other processes
// may observe stale configuration for up to the same window.
func NewStatusResolver(configRepo port.StatusConfigRepository, ttl time.Duration, logger *zap.Logger) StatusResolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &statusResolver{
		configRepo: configRepo,
		cache:      gocache.New(ttl, 2*ttl),
		logger:     logger,
	}
}

func configsKey(id int64) string { return fmt.Sprintf("configs:%d", id) }
func edgesKey(id int64) string   { return fmt.Sprintf("edges:%d", id) }

// Configs returns the active status configuration rows for a type,
// cache-first.
func (r *statusResolver) Configs(ctx context.Context, documentTypeID int64) ([]*entity.StatusConfig, error) {
	key := configsKey(documentTypeID)
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]*entity.StatusConfig), nil
	}

	configs, err := r.configRepo.ListByDocumentType(ctx, documentTypeID)
	if err != nil {
		r.logger.Error("Failed to load status configs",
			zap.Int64("document_type_id", documentTypeID), zap.Error(err))
		return nil, fmt.Errorf("load status configs: %w", err)
	}

	r.cache.SetDefault(key, configs)
	return configs, nil
}

// Edges returns the explicit transition edges for a type, cache-first.
func (r *statusResolver) Edges(ctx context.Context, documentTypeID int64) ([]*entity.TransitionEdge, error) {
	key := edgesKey(documentTypeID)
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]*entity.TransitionEdge), nil
	}

	edges, err := r.configRepo.ListEdges(ctx, documentTypeID)
	if err != nil {
		r.logger.Error("Failed to load transition edges",
			zap.Int64("document_type_id", documentTypeID), zap.Error(err))
		return nil, fmt.Errorf("load transition edges: %w", err)
	}

	r.cache.SetDefault(key, edges)
	return edges, nil
}

// InitialStatus returns the initial status for a type, if configured.
func (r *statusResolver) InitialStatus(ctx context.Context, documentTypeID int64) (string, bool, error) {
	configs, err := r.Configs(ctx, documentTypeID)
	if err != nil {
		return "", false, err
	}
	code := workflow.InitialStatus(configs)
	return code, code != "", nil
}

// FinalStatuses returns all statuses flagged final for a type.
func (r *statusResolver) FinalStatuses(ctx context.Context, documentTypeID int64) ([]string, error) {
	return r.StatusesInRole(ctx, documentTypeID, entity.RoleFinal)
}

// CancellationStatus returns the first cancellation status, if any.
func (r *statusResolver) CancellationStatus(ctx context.Context, documentTypeID int64) (string, bool, error) {
	codes, err := r.StatusesInRole(ctx, documentTypeID, entity.RoleCancellation)
	if err != nil {
		return "", false, err
	}
	if len(codes) == 0 {
		return "", false, nil
	}
	return codes[0], true, nil
}

// StatusesInRole returns the status codes carrying the given role flag.
func (r *statusResolver) StatusesInRole(ctx context.Context, documentTypeID int64, role entity.Role) ([]string, error) {
	configs, err := r.Configs(ctx, documentTypeID)
	if err != nil {
		return nil, err
	}

	codes := []string{}
	for _, c := range configs {
		if c.IsActive && c.InRole(role) {
			codes = append(codes, c.StatusCode)
		}
	}
	return codes, nil
}

// IsStatusInRole reports whether a status carries a role flag for the type.
func (r *statusResolver) IsStatusInRole(ctx context.Context, documentTypeID int64, status string, role entity.Role) (bool, error) {
	cfg, err := r.ConfigFor(ctx, documentTypeID, status)
	if err != nil {
		return false, err
	}
	if cfg == nil || !cfg.IsActive {
		return false, nil
	}
	return cfg.InRole(role), nil
}

// StatusesBySemanticType returns the statuses classified under the given
// semantic type. Classification comes from the explicit semantic_type
// column only.
func (r *statusResolver) StatusesBySemanticType(ctx context.Context, documentTypeID int64, semanticType entity.SemanticType) ([]string, error) {
	configs, err := r.Configs(ctx, documentTypeID)
	if err != nil {
		return nil, err
	}

	codes := []string{}
	for _, c := range configs {
		if c.IsActive && c.SemanticType == semanticType {
			codes = append(codes, c.StatusCode)
		}
	}
	return codes, nil
}

// ConfigFor returns the config row for one status of a type, or nil
// when the status is not configured.
func (r *statusResolver) ConfigFor(ctx context.Context, documentTypeID int64, status string) (*entity.StatusConfig, error) {
	configs, err := r.Configs(ctx, documentTypeID)
	if err != nil {
		return nil, err
	}
	for _, c := range configs {
		if c.StatusCode == status {
			return c, nil
		}
	}
	return nil, nil
}

// Invalidate drops cached entries for one document type.
func (r *statusResolver) Invalidate(documentTypeID int64) {
	r.cache.Delete(configsKey(documentTypeID))
	r.cache.Delete(edgesKey(documentTypeID))
}

// InvalidateAll drops every cached entry.
func (r *statusResolver) InvalidateAll() {
	r.cache.Flush()
}
