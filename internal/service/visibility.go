package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/elan-api/internal/dto"
	"github.com/noah-isme/elan-api/internal/models"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

// ListingScope names a listing collection a viewer may ask for.
type ListingScope string

const (
	ScopePublic     ListingScope = "public"
	ScopeMine       ListingScope = "mine"
	ScopeModeration ListingScope = "moderation"
	ScopeAll        ListingScope = "all"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	statusAll       = "all"
)

// ScopeQuery translates a scope into the store filter for actor. status narrows ScopeAll only.
func ScopeQuery(actor models.Actor, scope ListingScope, status *models.ListingStatus) (models.ListingQuery, error) {
	switch scope {
	case ScopePublic:
		approved := models.StatusApproved
		return models.ListingQuery{Status: &approved}, nil
	case ScopeMine:
		if actor.Kind() == models.ViewerAnonymous {
			return models.ListingQuery{}, appErrors.ErrUnauthorized
		}
		owner := actor.ID
		return models.ListingQuery{UserID: &owner}, nil
	case ScopeModeration, ScopeAll:
		switch actor.Kind() {
		case models.ViewerAnonymous:
			return models.ListingQuery{}, appErrors.ErrUnauthorized
		case models.ViewerMember:
			return models.ListingQuery{}, appErrors.Clone(appErrors.ErrForbidden, "admin capability required")
		}
		if scope == ScopeModeration {
			pending := models.StatusPending
			return models.ListingQuery{Status: &pending}, nil
		}
		if status != nil {
			if !status.Valid() {
				return models.ListingQuery{}, appErrors.Validation("status", "unknown status "+string(*status))
			}
			s := *status
			return models.ListingQuery{Status: &s}, nil
		}
		return models.ListingQuery{}, nil
	default:
		return models.ListingQuery{}, appErrors.Validation("scope", "unknown scope "+string(scope))
	}
}

// CanView decides single-record visibility.
func CanView(actor models.Actor, listing *models.Listing) bool {
	if listing == nil {
		return false
	}
	if listing.Status == models.StatusApproved {
		return true
	}
	switch actor.Kind() {
	case models.ViewerAdmin:
		return true
	case models.ViewerMember:
		return actor.Owns(listing)
	default:
		return false
	}
}

// MatchesFilter applies the search and category narrowing to one listing.
func MatchesFilter(listing models.Listing, filter dto.ListingFilter) bool {
	category := strings.TrimSpace(filter.Category)
	if category != "" && category != dto.CategoryAll && string(listing.Category) != category {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(listing.Title), needle) ||
		strings.Contains(strings.ToLower(listing.Description), needle)
}

// ApplyFilter returns the listings matching filter, newest first.
func ApplyFilter(listings []models.Listing, filter dto.ListingFilter) []models.Listing {
	result := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if MatchesFilter(l, filter) {
			result = append(result, l)
		}
	}
	sortNewestFirst(result)
	return result
}

// Paginate slices an already filtered collection.
func Paginate(listings []models.Listing, page, pageSize int) ([]models.Listing, models.Pagination) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	meta := models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(listings)}

	pages := (len(listings) + pageSize - 1) / pageSize
	if page > pages {
		return []models.Listing{}, meta
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(listings) {
		end = len(listings)
	}
	return listings[start:end], meta
}

func sortNewestFirst(listings []models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		if !listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		}
		return listings[i].Seq > listings[j].Seq
	})
}
