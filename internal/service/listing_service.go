package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/elan-api/internal/dto"
	"github.com/noah-isme/elan-api/internal/models"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

type listingStore interface {
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	List(ctx context.Context, q models.ListingQuery) ([]models.Listing, error)
	UpdateContent(ctx context.Context, id string, content models.ListingContent, allowed []models.ListingStatus) (*models.Listing, error)
	UpdateStatus(ctx context.Context, id string, to models.ListingStatus, from []models.ListingStatus) (*models.Listing, error)
	Delete(ctx context.Context, id string) error
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ListingResult is one page of a listing collection.
type ListingResult struct {
	Items      []models.Listing
	Pagination models.Pagination
	CacheHit   bool
}

// ListingServiceConfig carries the optional collaborators of ListingService.
type ListingServiceConfig struct {
	Cache    *CacheService
	CacheTTL time.Duration
	Audit    auditWriter
	Metrics  *MetricsService
	Logger   *zap.Logger
}

// ListingService runs the listing lifecycle: submission, moderation, visibility and views.
type ListingService struct {
	store     listingStore
	validator *ListingValidator
	views     ViewRecorder
	cache     *CacheService
	cacheTTL  time.Duration
	audit     auditWriter
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewListingService constructs a ListingService.
func NewListingService(store listingStore, validator *ListingValidator, views ViewRecorder, cfg ListingServiceConfig) *ListingService {
	if validator == nil {
		validator = NewListingValidator(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &ListingService{
		store:     store,
		validator: validator,
		views:     views,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		audit:     cfg.Audit,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the payload and stores a new pending listing owned by actor.
func (s *ListingService) Create(ctx context.Context, actor models.Actor, payload dto.ListingPayload) (*models.Listing, error) {
	if err := authorize(actor, EventCreate, nil); err != nil {
		return nil, err
	}
	content, err := s.validator.Validate(payload)
	if err != nil {
		return nil, err
	}

	listing := &models.Listing{
		UserID:         actor.ID,
		Status:         InitialStatus(),
		Views:          0,
		ListingContent: content,
		CreatedAt:      s.now(),
	}
	if err := s.store.Create(ctx, listing); err != nil {
		return nil, appErrors.Unavailable(err, "failed to create listing")
	}

	s.afterMutation(ctx, actor, EventCreate, models.AuditActionListingCreate, listing.ID, nil, listing)
	return listing, nil
}

// Get returns a single listing the actor may see. Approved listings record one view; the
// returned count is the value read before that increment.
func (s *ListingService) Get(ctx context.Context, actor models.Actor, id string) (*models.Listing, error) {
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, listing) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "listing not found")
	}
	if listing.Status == models.StatusApproved && s.views != nil {
		s.views.Record(listing.ID)
	}
	return listing, nil
}

// ListPublic returns approved listings for any viewer. View increments do not invalidate the
// cached set, so list view counts may trail the detail endpoint by up to the cache TTL.
func (s *ListingService) ListPublic(ctx context.Context, actor models.Actor, filter dto.ListingFilter) (*ListingResult, error) {
	query, err := ScopeQuery(actor, ScopePublic, nil)
	if err != nil {
		return nil, err
	}

	var listings []models.Listing
	hit, cacheErr := s.cache.Get(ctx, publicListingsKey, &listings)
	if cacheErr != nil || !hit {
		listings, err = s.store.List(ctx, query)
		if err != nil {
			return nil, appErrors.Unavailable(err, "failed to list listings")
		}
		_ = s.cache.Set(ctx, publicListingsKey, listings, s.cacheTTL)
	}

	result := s.page(listings, filter)
	result.CacheHit = hit
	return result, nil
}

// ListMine returns every listing the actor submitted, in any state.
func (s *ListingService) ListMine(ctx context.Context, actor models.Actor, filter dto.ListingFilter) (*ListingResult, error) {
	return s.listScope(ctx, actor, ScopeMine, nil, filter)
}

// ListModeration returns the pending queue, or every listing in status when one is given.
// The status "all" lists every state.
func (s *ListingService) ListModeration(ctx context.Context, actor models.Actor, status string, filter dto.ListingFilter) (*ListingResult, error) {
	switch status {
	case "":
		return s.listScope(ctx, actor, ScopeModeration, nil, filter)
	case statusAll:
		return s.listScope(ctx, actor, ScopeAll, nil, filter)
	default:
		st := models.ListingStatus(status)
		return s.listScope(ctx, actor, ScopeAll, &st, filter)
	}
}

// Update replaces the content of a pending or approved listing. Only the owner or an admin may edit.
func (s *ListingService) Update(ctx context.Context, actor models.Actor, id string, payload dto.ListingPayload) (*models.Listing, error) {
	if !actor.Authenticated() {
		return nil, appErrors.ErrUnauthorized
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, EventEdit, current); err != nil {
		return nil, err
	}
	if _, _, err := Transition(current.Status, EventEdit); err != nil {
		return nil, err
	}
	content, err := s.validator.Validate(payload)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateContent(ctx, id, content, legalSources(EventEdit))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.explainMiss(ctx, id, EventEdit)
		}
		return nil, appErrors.Unavailable(err, "failed to update listing")
	}

	s.afterMutation(ctx, actor, EventEdit, models.AuditActionListingUpdate, id, current, updated)
	return updated, nil
}

// Delete removes a listing. Only the owner or an admin may delete.
func (s *ListingService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if !actor.Authenticated() {
		return appErrors.ErrUnauthorized
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, EventDelete, current); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "listing not found")
		}
		return appErrors.Unavailable(err, "failed to delete listing")
	}

	s.afterMutation(ctx, actor, EventDelete, models.AuditActionListingDelete, id, current, nil)
	return nil
}

// Approve publishes a pending listing. Approving an approved listing is a no-op.
func (s *ListingService) Approve(ctx context.Context, actor models.Actor, id string) (*models.Listing, error) {
	return s.moderate(ctx, actor, id, EventApprove, models.AuditActionApprove)
}

// Reject marks a pending listing rejected. The record is kept; rejecting twice is a no-op.
func (s *ListingService) Reject(ctx context.Context, actor models.Actor, id string) (*models.Listing, error) {
	return s.moderate(ctx, actor, id, EventReject, models.AuditActionReject)
}

func (s *ListingService) moderate(ctx context.Context, actor models.Actor, id string, event ListingEvent, action string) (*models.Listing, error) {
	if err := authorize(actor, event, nil); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	to, noop, err := Transition(current.Status, event)
	if err != nil {
		return nil, err
	}
	if noop {
		return current, nil
	}

	updated, err := s.store.UpdateStatus(ctx, id, to, changingSources(event))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Someone else moved or removed the listing between the read and the write.
			fresh, loadErr := s.load(ctx, id)
			if loadErr != nil {
				return nil, loadErr
			}
			if _, noop, trErr := Transition(fresh.Status, event); trErr == nil && noop {
				return fresh, nil
			}
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "listing is already "+string(fresh.Status))
		}
		return nil, appErrors.Unavailable(err, "failed to update listing status")
	}

	s.afterMutation(ctx, actor, event, action, id, current, updated)
	return updated, nil
}

func (s *ListingService) listScope(ctx context.Context, actor models.Actor, scope ListingScope, status *models.ListingStatus, filter dto.ListingFilter) (*ListingResult, error) {
	query, err := ScopeQuery(actor, scope, status)
	if err != nil {
		return nil, err
	}
	listings, err := s.store.List(ctx, query)
	if err != nil {
		return nil, appErrors.Unavailable(err, "failed to list listings")
	}
	return s.page(listings, filter), nil
}

func (s *ListingService) page(listings []models.Listing, filter dto.ListingFilter) *ListingResult {
	items, meta := Paginate(ApplyFilter(listings, filter), filter.Page, filter.PageSize)
	return &ListingResult{Items: items, Pagination: meta}
}

func (s *ListingService) load(ctx context.Context, id string) (*models.Listing, error) {
	listing, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "listing not found")
		}
		return nil, appErrors.Unavailable(err, "failed to load listing")
	}
	return listing, nil
}

func (s *ListingService) explainMiss(ctx context.Context, id string, event ListingEvent) error {
	fresh, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	_, _, err = Transition(fresh.Status, event)
	if err != nil {
		return err
	}
	return appErrors.Clone(appErrors.ErrInvalidTransition, "listing changed concurrently")
}

func (s *ListingService) afterMutation(ctx context.Context, actor models.Actor, event ListingEvent, action, id string, before, after *models.Listing) {
	s.metrics.RecordTransition(event)

	if err := s.cache.Invalidate(ctx, listingCachePattern); err != nil {
		s.logger.Warn("failed to invalidate listing cache", zap.String("listing_id", id), zap.Error(err))
	}

	if s.audit == nil {
		return
	}
	actorID := actor.ID
	resourceID := id
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "listing",
		ResourceID: &resourceID,
		OldValues:  auditSnapshot(before),
		NewValues:  auditSnapshot(after),
		CreatedAt:  s.now(),
	}); err != nil {
		s.logger.Warn("failed to record listing audit log", zap.String("action", action), zap.String("listing_id", id), zap.Error(err))
	}
}

// legalSources returns every state the event may fire from.
func legalSources(event ListingEvent) []models.ListingStatus {
	var sources []models.ListingStatus
	for _, from := range []models.ListingStatus{models.StatusPending, models.StatusApproved, models.StatusRejected} {
		if _, ok := transitionTable[event][from]; ok {
			sources = append(sources, from)
		}
	}
	return sources
}

func auditSnapshot(l *models.Listing) []byte {
	if l == nil {
		return nil
	}
	raw, err := json.Marshal(struct {
		Status models.ListingStatus `json:"status"`
		models.ListingContent
	}{Status: l.Status, ListingContent: l.ListingContent})
	if err != nil {
		return nil
	}
	return raw
}
