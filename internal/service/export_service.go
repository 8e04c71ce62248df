package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/elan-api/internal/dto"
	"github.com/noah-isme/elan-api/internal/models"
	"github.com/noah-isme/elan-api/pkg/catalog"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
	"github.com/noah-isme/elan-api/pkg/export"
)

type listingLister interface {
	List(ctx context.Context, q models.ListingQuery) ([]models.Listing, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Enabled bool
}

// ExportService renders moderation snapshots for administrators.
type ExportService struct {
	listings listingLister
	catalog  *catalog.Catalog
	cfg      ExportConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(listings listingLister, cat *catalog.Catalog, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &ExportService{listings: listings, catalog: cat, cfg: cfg, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Export renders every listing in the requested status. An empty status exports the pending
// queue and "all" exports every state.
func (s *ExportService) Export(ctx context.Context, actor models.Actor, req dto.ExportRequest) (*dto.ExportFile, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, appErrors.Validation("format", err.Error())
	}
	renderer, err := export.RendererFor(format)
	if err != nil {
		return nil, appErrors.Validation("format", err.Error())
	}

	var query models.ListingQuery
	label := req.Status
	switch req.Status {
	case "":
		label = string(models.StatusPending)
		query, err = ScopeQuery(actor, ScopeModeration, nil)
	case statusAll:
		query, err = ScopeQuery(actor, ScopeAll, nil)
	default:
		st := models.ListingStatus(req.Status)
		query, err = ScopeQuery(actor, ScopeAll, &st)
	}
	if err != nil {
		return nil, err
	}

	listings, err := s.listings.List(ctx, query)
	if err != nil {
		return nil, appErrors.Unavailable(err, "failed to load listings for export")
	}
	sortNewestFirst(listings)

	body, err := renderer.Render(s.table(label, listings))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("listing export generated",
		zap.String("actor_id", actor.ID),
		zap.String("status", label),
		zap.String("format", string(format)),
		zap.Int("rows", len(listings)),
	)

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("listings-%s-%s.%s", label, s.now().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *ExportService) table(status string, listings []models.Listing) export.Table {
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []string{
			l.ID,
			l.Title,
			s.catalog.CategoryLabel(string(l.Category)),
			l.City,
			string(l.Status),
			strconv.FormatInt(l.Views, 10),
			l.ContactEmail,
			l.ContactPhone,
			l.CreatedAt.Format(time.RFC3339),
		})
	}
	return export.Table{
		Title:   "Elanlar: " + status,
		Columns: []string{"ID", "Başlıq", "Kateqoriya", "Şəhər", "Status", "Baxış", "Email", "Telefon", "Yaradılıb"},
		Rows:    rows,
	}
}
