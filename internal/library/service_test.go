package library

import (
	"context"
	"strings"
	"sync"
	"testing"

	"gameo/backend/internal/enrichment"
	"gameo/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnricher struct {
	mu     sync.Mutex
	calls  int
	result enrichment.Result
}

func (f *fakeEnricher) Enrich(ctx context.Context, name, country, language, ageGroup string) enrichment.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result
}

func TestAddOrMergeCreatesNewRecord(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, 0)
	owner := uuid.New()

	game, outcome, err := svc.AddOrMerge(context.Background(), owner, Candidate{
		Name:       "Hades",
		SteamAppID: "1145360",
		Platform:   "PC",
	}, AddOptions{})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	require.NotNil(t, game.SteamAppID)
	assert.Equal(t, "1145360", *game.SteamAppID)
	assert.Equal(t, "PC", game.Platforms)

	var count int64
	db.Model(&models.Game{}).Where("owner_id = ?", owner).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAddOrMergeRequiresName(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, 0)

	_, _, err := svc.AddOrMerge(context.Background(), uuid.New(), Candidate{Name: "   "}, AddOptions{})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestAddOrMergeDuplicateOutcome(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, 0)
	owner := uuid.New()
	ctx := context.Background()

	cand := Candidate{Name: "Hades", SteamAppID: "1145360", Platform: "PC"}

	first, outcome, err := svc.AddOrMerge(ctx, owner, cand, AddOptions{})
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome)

	second, outcome, err := svc.AddOrMerge(ctx, owner, cand, AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	assert.Equal(t, first.ID, second.ID)
}

// A steam-originated record is not merged into by a psn candidate of the
// same name: the name fallback only considers psnId-bearing records.
func TestAddOrMergeSteamThenPSNCreatesSeparateRecords(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, 0)
	owner := uuid.New()
	ctx := context.Background()

	_, outcome, err := svc.AddOrMerge(ctx, owner, Candidate{Name: "Hades", SteamAppID: "1145360"}, AddOptions{})
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome)

	_, outcome, err = svc.AddOrMerge(ctx, owner, Candidate{
		Name:     "Hades",
		PSNID:    "CUSA12345",
		Platform: "PS5",
	}, AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	var count int64
	db.Model(&models.Game{}).Where("owner_id = ?", owner).Count(&count)
	assert.EqualValues(t, 2, count)
}

// PS4 and PS5 variants of one title merge into a single record; the second
// variant's psnId is dropped because the slot is already occupied.
func TestAddOrMergePlatformVariantMerge(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, 0)
	owner := uuid.New()
	ctx := context.Background()

	first, outcome, err := svc.AddOrMerge(ctx, owner, Candidate{
		Name:     "Bloodborne",
		PSNID:    "X1",
		Platform: "PS4",
	}, AddOptions{})
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome)

	merged, outcome, err := svc.AddOrMerge(ctx, owner, Candidate{
		Name:     "Bloodborne",
		PSNID:    "X2",
		Platform: "PS5",
	}, AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeMerged, outcome)
	assert.Equal(t, first.ID, merged.ID)

	var stored models.Game
	require.NoError(t, db.First(&stored, "id = ?", first.ID).Error)
	assert.Equal(t, "PS4, PS5", stored.Platforms)
	require.NotNil(t, stored.PSNID)
	assert.Equal(t, "X1", *stored.PSNID)

	var count int64
	db.Model(&models.Game{}).Where("owner_id = ?", owner).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAddOrMergeCrossSourceMerge(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, 0)
	owner := uuid.New()
	ctx := context.Background()

	first, _, err := svc.AddOrMerge(ctx, owner, Candidate{
		Name:     "Hades",
		PSNID:    "NPWR20188_00",
		Platform: "PS5",
	}, AddOptions{})
	require.NoError(t, err)

	// A later candidate carrying both ids attaches the steam id to the
	// existing psn record.
	merged, outcome, err := svc.AddOrMerge(ctx, owner, Candidate{
		Name:       "Hades",
		SteamAppID: "1145360",
		PSNID:      "NPWR20188_00",
		Platform:   "PC",
	}, AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeMerged, outcome)
	assert.Equal(t, first.ID, merged.ID)

	var stored models.Game
	require.NoError(t, db.First(&stored, "id = ?", first.ID).Error)
	require.NotNil(t, stored.SteamAppID)
	require.NotNil(t, stored.PSNID)
	assert.Equal(t, "PC, PS5", stored.Platforms)
}

func TestAddOrMergeEnrichmentFillsUntrustedOnly(t *testing.T) {
	db := newTestDB(t)

	publisher := "Other Corp"
	date := "Aug 2023"
	enricher := &fakeEnricher{result: enrichment.Result{Publisher: &publisher, ReleaseDate: &date}}
	svc := NewService(db, enricher, 0)
	ctx := context.Background()

	// Trusted studio survives; empty release date is filled.
	game, _, err := svc.AddOrMerge(ctx, uuid.New(), Candidate{
		Name:   "Baldur's Gate 3",
		Studio: "Larian Studios",
	}, AddOptions{Enrich: true})
	require.NoError(t, err)
	assert.Equal(t, "Larian Studios", game.Studio)
	assert.Equal(t, "Aug 2023", game.ReleaseDate)

	// Placeholder studio is replaced.
	game, _, err = svc.AddOrMerge(ctx, uuid.New(), Candidate{
		Name:   "Baldur's Gate 3",
		Studio: "Unknown Studio",
	}, AddOptions{Enrich: true})
	require.NoError(t, err)
	assert.Equal(t, "Other Corp", game.Studio)
}

func TestAddOrMergeEnrichmentGating(t *testing.T) {
	db := newTestDB(t)
	enricher := &fakeEnricher{}
	svc := NewService(db, enricher, 0)
	ctx := context.Background()

	// Fully-specified candidate: no lookup even though Enrich is set.
	_, _, err := svc.AddOrMerge(ctx, uuid.New(), Candidate{
		Name:        "Hades",
		Studio:      "Supergiant Games",
		ReleaseDate: "Sep 2020",
	}, AddOptions{Enrich: true})
	require.NoError(t, err)
	assert.Equal(t, 0, enricher.calls)

	// Enrich flag off: no lookup either.
	_, _, err = svc.AddOrMerge(ctx, uuid.New(), Candidate{Name: "Hades"}, AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, enricher.calls)

	// Missing metadata with the flag on triggers exactly one lookup.
	_, _, err = svc.AddOrMerge(ctx, uuid.New(), Candidate{Name: "Hades"}, AddOptions{Enrich: true})
	require.NoError(t, err)
	assert.Equal(t, 1, enricher.calls)
}

func TestImportAllAggregatesOutcomes(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, 3)
	owner := uuid.New()
	ctx := context.Background()

	// Pre-existing PS4 record the import merges into.
	_, _, err := svc.AddOrMerge(ctx, owner, Candidate{Name: "Bloodborne", PSNID: "X1", Platform: "PS4"}, AddOptions{})
	require.NoError(t, err)

	report := svc.ImportAll(ctx, owner, []Candidate{
		{Name: "Bloodborne", PSNID: "X2", Platform: "PS5"},         // merges
		{Name: "Hades", PSNID: "NPWR20188_00", Platform: "PS5"},    // created
		{Name: "Returnal", PSNID: "NPWR19932_00", Platform: "PS5"}, // created
		{Name: "Bloodborne", PSNID: "X1", Platform: "PS4"},         // duplicate
		{Name: "", PSNID: "NPWR00001_00"},                          // validation error
	}, AddOptions{})

	assert.Equal(t, 2, report.Added)
	assert.Equal(t, 1, report.Merged)
	assert.Equal(t, 2, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.True(t, strings.Contains(report.Errors[0], "name is required"))
}

func TestImportAllIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, 0)
	owner := uuid.New()
	ctx := context.Background()

	candidates := []Candidate{
		{Name: "Hades", SteamAppID: "1145360", Platform: "PC"},
		{Name: "Celeste", SteamAppID: "504230", Platform: "PC"},
	}

	first := svc.ImportAll(ctx, owner, candidates, AddOptions{})
	assert.Equal(t, 2, first.Added)

	second := svc.ImportAll(ctx, owner, candidates, AddOptions{})
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 0, second.Merged)
	assert.Equal(t, 2, second.Skipped)
	assert.Empty(t, second.Errors)
}
