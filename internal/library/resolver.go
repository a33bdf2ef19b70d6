package library

import (
	"errors"

	"gameo/backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resolve determines which existing record, if any, a candidate corresponds
// to. Lookup order, first match wins:
//
//  1. (owner, steamAppId) when the candidate carries a Steam id.
//  2. (owner, psnId) when the candidate carries a PSN id.
//  3. For PSN candidates only: exact name match (case-insensitive) against
//     records that already carry some psnId. This merges platform variants
//     of one title (a PS4 and a PS5 release) into a single record.
//
// Step 3 returns ErrAmbiguousMatch when more than one record qualifies
// rather than silently picking one. A nil record with a nil error means no
// match: the caller creates a new record.
//
// Read-only; no side effects.
func Resolve(db *gorm.DB, ownerID uuid.UUID, cand Candidate) (*models.Game, error) {
	if cand.SteamAppID != "" {
		game, err := lookup(db, "owner_id = ? AND steam_app_id = ?", ownerID, cand.SteamAppID)
		if game != nil || err != nil {
			return game, err
		}
	}

	if cand.PSNID != "" {
		game, err := lookup(db, "owner_id = ? AND psn_id = ?", ownerID, cand.PSNID)
		if game != nil || err != nil {
			return game, err
		}

		var matches []models.Game
		err = db.
			Where("owner_id = ? AND psn_id IS NOT NULL AND LOWER(name) = LOWER(?)", ownerID, cand.Name).
			Find(&matches).Error
		if err != nil {
			return nil, err
		}
		switch len(matches) {
		case 0:
			return nil, nil
		case 1:
			return &matches[0], nil
		default:
			return nil, ErrAmbiguousMatch
		}
	}

	return nil, nil
}

func lookup(db *gorm.DB, query string, args ...any) (*models.Game, error) {
	var game models.Game
	err := db.Where(query, args...).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}
