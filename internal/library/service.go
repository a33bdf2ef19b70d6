package library

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gameo/backend/internal/enrichment"
	"gameo/backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enricher is the metadata-completion capability the service consumes. It
// must never fail: lookups degrade to an empty result.
type Enricher interface {
	Enrich(ctx context.Context, name, country, language, ageGroup string) enrichment.Result
}

// Service reconciles candidates against the library store.
type Service struct {
	db          *gorm.DB
	enricher    Enricher
	concurrency int
	logger      *slog.Logger
}

// NewService builds a reconciliation service. enricher may be nil to disable
// metadata enrichment entirely. concurrency bounds bulk-import fan-out and
// falls back to 10 when not positive.
func NewService(db *gorm.DB, enricher Enricher, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &Service{
		db:          db,
		enricher:    enricher,
		concurrency: concurrency,
		logger:      slog.Default().With("component", "library"),
	}
}

// AddOptions controls a single add/merge operation.
type AddOptions struct {
	// Enrich requests best-effort metadata completion for new records with
	// untrusted studio or missing release date.
	Enrich bool

	// Store locale used for enrichment lookups.
	Country  string
	Language string
	AgeGroup string
}

// AddOrMerge reconciles one candidate into the owner's library and reports
// what happened: a resolution miss creates a record, a hit with new
// information merges, and a hit contributing nothing is a duplicate (not an
// error).
//
// A resolve-then-insert race with a concurrent add of the same game is
// caught by the store's (owner, source id) unique indexes; on a duplicate-key
// insert error the candidate is resolved once more and merged into whichever
// record won.
func (s *Service) AddOrMerge(ctx context.Context, ownerID uuid.UUID, cand Candidate, opts AddOptions) (*models.Game, Outcome, error) {
	if strings.TrimSpace(cand.Name) == "" {
		return nil, "", ErrNameRequired
	}
	return s.addOrMerge(ctx, ownerID, cand, opts, true)
}

func (s *Service) addOrMerge(ctx context.Context, ownerID uuid.UUID, cand Candidate, opts AddOptions, retryOnConflict bool) (*models.Game, Outcome, error) {
	db := s.db.WithContext(ctx)

	existing, err := Resolve(db, ownerID, cand)
	if err != nil {
		return nil, "", err
	}

	if existing != nil {
		updates := ComputeMerge(existing, cand)
		if updates == nil {
			return existing, OutcomeDuplicate, nil
		}
		res := db.Model(existing).Updates(updates)
		if res.Error != nil {
			return nil, "", res.Error
		}
		if res.RowsAffected == 0 {
			// Deleted out from under us between resolve and update.
			return nil, "", gorm.ErrRecordNotFound
		}
		return existing, OutcomeMerged, nil
	}

	if opts.Enrich && s.enricher != nil && enrichment.NeedsEnrichment(cand.Studio, cand.ReleaseDate) {
		s.fillFromEnrichment(ctx, &cand, opts)
	}

	game := models.Game{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(cand.Name),
		Platforms:   MergePlatforms("", cand.Platform),
		Studio:      cand.Studio,
		ReleaseDate: cand.ReleaseDate,
		Price:       cand.Price,
		TimePlayed:  cand.TimePlayed,
	}
	if cand.SteamAppID != "" {
		game.SteamAppID = &cand.SteamAppID
	}
	if cand.PSNID != "" {
		game.PSNID = &cand.PSNID
	}

	if err := db.Create(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && retryOnConflict {
			s.logger.Info("insert lost a concurrent-add race, re-resolving",
				"owner", ownerID, "name", cand.Name)
			return s.addOrMerge(ctx, ownerID, cand, opts, false)
		}
		return nil, "", err
	}
	return &game, OutcomeCreated, nil
}

// fillFromEnrichment copies provider metadata into the candidate without
// downgrading trusted data: publisher only replaces an absent or placeholder
// studio, release date only fills an empty one.
func (s *Service) fillFromEnrichment(ctx context.Context, cand *Candidate, opts AddOptions) {
	res := s.enricher.Enrich(ctx, cand.Name, opts.Country, opts.Language, opts.AgeGroup)

	if res.Publisher != nil && !enrichment.TrustedStudio(cand.Studio) {
		cand.Studio = *res.Publisher
	}
	if res.ReleaseDate != nil && strings.TrimSpace(cand.ReleaseDate) == "" {
		cand.ReleaseDate = *res.ReleaseDate
	}
}
