package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/geo"
	"github.com/kailas-cloud/agenda/internal/domain/search/filter"
	"github.com/kailas-cloud/agenda/internal/domain/search/query"
	"github.com/kailas-cloud/agenda/internal/metrics"
)

// Over-fetch multiplier bounds.
const (
	DefaultOverfetch = 3
	MinOverfetch     = 2
)

// Search modes, used as the metrics label.
const (
	modePublic = "public"
	modeNearby = "nearby"
	modeOwned  = "owned"
)

// Service pages through contacts with optional category, keyword and radius
// filters. The store only narrows geo searches to a bounding box; the exact
// radius check runs here, over-fetching batches until a page is full or the
// store runs dry.
type Service struct {
	docs            Documents
	overfetch       int
	defaultPageSize int
	maxPageSize     int
	logger          *zap.Logger
}

// New creates a search service.
func New(docs Documents) *Service {
	return &Service{
		docs:            docs,
		overfetch:       DefaultOverfetch,
		defaultPageSize: 20,
		maxPageSize:     100,
		logger:          zap.NewNop(),
	}
}

// WithOverfetch sets the batch multiplier K: geo searches read limit*K records per batch.
// Values below MinOverfetch are raised to it.
func (s *Service) WithOverfetch(k int) *Service {
	if k < MinOverfetch {
		k = MinOverfetch
	}
	s.overfetch = k
	return s
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// DefaultPageSize is the limit callers should use when none was requested.
func (s *Service) DefaultPageSize() int { return s.defaultPageSize }

// SearchPublic pages through public contacts, newest first.
func (s *Service) SearchPublic(ctx context.Context, p Params) (Page, error) {
	q := query.New().WhereEquals(domcontact.FieldPublic, "true")
	return s.run(ctx, modePublic, q, p)
}

// Nearby pages through public contacts within a radius. Centre and radius are
// required; each page is ordered by distance.
func (s *Service) Nearby(ctx context.Context, p Params) (Page, error) {
	if p.Lat == nil || p.Lon == nil || p.RadiusKm == nil {
		return Page{}, domain.NewInvalidArgument("lat/lon/radius_km", "required for a nearby search")
	}
	q := query.New().WhereEquals(domcontact.FieldPublic, "true")
	page, err := s.run(ctx, modeNearby, q, p)
	if err != nil {
		return Page{}, err
	}
	sort.SliceStable(page.Contacts, func(i, j int) bool {
		return *page.Contacts[i].DistanceKm < *page.Contacts[j].DistanceKm
	})
	return page, nil
}

// ListOwned pages through the contacts of ownerID, newest first, optionally
// only the favorites.
func (s *Service) ListOwned(ctx context.Context, ownerID string, p Params) (Page, error) {
	if ownerID == "" {
		return Page{}, domain.ErrUnauthorized
	}
	q := query.New().WhereEquals(domcontact.FieldOwnerID, ownerID)
	if p.FavoritesOnly {
		q = q.WhereEquals(domcontact.FieldFavorite, "true")
	}
	return s.run(ctx, modeOwned, q, p)
}

func (s *Service) run(ctx context.Context, mode string, base query.Query, p Params) (Page, error) {
	circle, err := p.validate()
	if err != nil {
		return Page{}, err
	}
	limit := p.Limit
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	q := base.OrderBy(domcontact.FieldCreatedAt, query.Desc)
	if p.CategoryID != "" {
		q = q.WhereEquals(domcontact.FieldCategoryID, p.CategoryID)
	}
	if term := domcontact.NormalizeSearch(p.Search); term != "" {
		q = q.WhereContains(domcontact.FieldKeywords, term)
	}

	start := time.Now()
	cursor, err := s.resolveCursor(ctx, p.Cursor)
	if err != nil {
		return Page{}, err
	}

	var st stats
	var page Page
	if circle == nil {
		page, err = s.plain(ctx, q, cursor, limit, &st)
	} else {
		page, err = s.geo(ctx, q, cursor, limit, *circle, &st)
	}
	if err != nil {
		return Page{}, err
	}

	metrics.SearchBatchesTotal.WithLabelValues(mode).Add(float64(st.batches))
	metrics.SearchScannedTotal.WithLabelValues(mode).Add(float64(st.scanned))
	metrics.SearchAcceptedTotal.WithLabelValues(mode).Add(float64(len(page.Contacts)))
	metrics.SearchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	s.logger.Debug("Contact search",
		zap.String("mode", mode),
		zap.Int("limit", limit),
		zap.Bool("geo", circle != nil),
		zap.Int("batches", st.batches),
		zap.Int("scanned", st.scanned),
		zap.Int("accepted", len(page.Contacts)),
	)
	return page, nil
}

type stats struct {
	batches int
	scanned int
}

func (s *Service) resolveCursor(ctx context.Context, id string) (query.Cursor, error) {
	if id == "" {
		return query.Cursor{}, nil
	}
	snap, err := s.docs.Snapshot(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return query.Cursor{}, domain.NewCursorNotFound(id)
		}
		return query.Cursor{}, fmt.Errorf("resolve cursor: %w", err)
	}
	return snap.Cursor, nil
}

// plain reads a single page; the store applies every filter.
func (s *Service) plain(ctx context.Context, q query.Query, cursor query.Cursor, limit int, st *stats) (Page, error) {
	snaps, err := s.docs.Execute(ctx, q.Limit(limit).StartAfter(cursor))
	if err != nil {
		return Page{}, fmt.Errorf("execute query: %w", err)
	}
	st.batches = 1
	st.scanned = len(snaps)

	hits := make([]Hit, 0, len(snaps))
	for _, snap := range snaps {
		c, err := domcontact.FromFields(snap.ID, snap.Fields)
		if err != nil {
			return Page{}, fmt.Errorf("decode contact: %w", err)
		}
		hits = append(hits, Hit{Contact: c})
	}
	return newPage(hits, limit, st.batches), nil
}

// geo narrows the query to the bounding box of circle and filters each batch
// by exact distance, reading limit*K records at a time.
func (s *Service) geo(
	ctx context.Context, q query.Query, cursor query.Cursor, limit int, circle area, st *stats,
) (Page, error) {
	box := geo.NewBoundingBox(circle.center, circle.radiusKm)
	q = q.WhereRange(domcontact.FieldLatitude, filter.Between(box.LatMin(), box.LatMax()))
	if !box.WrapsLongitude() {
		q = q.WhereRange(domcontact.FieldLongitude, filter.Between(box.LonMin(), box.LonMax()))
	}

	batchSize := limit * s.overfetch
	hits := make([]Hit, 0, limit)
	for len(hits) < limit {
		if err := ctx.Err(); err != nil {
			return Page{}, fmt.Errorf("search contacts: %w", err)
		}

		snaps, err := s.docs.Execute(ctx, q.Limit(batchSize).StartAfter(cursor))
		if err != nil {
			return Page{}, fmt.Errorf("execute batch %d: %w", st.batches+1, err)
		}
		st.batches++
		if len(snaps) == 0 {
			break
		}

		for _, snap := range snaps {
			st.scanned++
			cursor = snap.Cursor

			hit, ok, err := s.accept(snap, circle)
			if err != nil {
				return Page{}, err
			}
			if !ok {
				continue
			}
			hits = append(hits, hit)
			if len(hits) == limit {
				break
			}
		}

		if len(snaps) < batchSize {
			break
		}
	}
	return newPage(hits, limit, st.batches), nil
}

// accept decodes snap when it lies inside circle.
func (s *Service) accept(snap query.Snapshot, circle area) (Hit, bool, error) {
	loc, ok, err := domcontact.LocationFromFields(snap.Fields)
	if err != nil {
		s.logger.Warn("Skipping contact with unreadable location",
			zap.String("contact_id", snap.ID), zap.Error(err))
		return Hit{}, false, nil
	}
	if !ok {
		return Hit{}, false, nil
	}
	d := loc.DistanceTo(circle.center)
	if d > circle.radiusKm {
		return Hit{}, false, nil
	}

	c, err := domcontact.FromFields(snap.ID, snap.Fields)
	if err != nil {
		return Hit{}, false, fmt.Errorf("decode contact: %w", err)
	}
	return Hit{Contact: c, DistanceKm: &d}, true, nil
}

func newPage(hits []Hit, limit, batches int) Page {
	p := Page{Contacts: hits, Batches: batches}
	if len(hits) == limit {
		p.NextCursor = hits[len(hits)-1].Contact.ID()
	}
	return p
}
