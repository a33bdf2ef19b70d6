package library

import (
	"testing"

	"gameo/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestMergePlatforms(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		incoming string
		want     string
	}{
		{"both empty", "", "", ""},
		{"existing only", "PS4", "", "PS4"},
		{"incoming only", "", "PS5", "PS5"},
		{"union", "PS4", "PS5", "PS4, PS5"},
		{"idempotent", "PS4, PS5", "PS4", "PS4, PS5"},
		{"case normalized", "ps4", "PS4", "PS4"},
		{"whitespace trimmed", " PS4 ,PS5 ", "ps5", "PS4, PS5"},
		{"sorted lexically", "VITA", "PC,PS3", "PC, PS3, VITA"},
		{"multi-valued incoming", "", "PS4,PS5", "PS4, PS5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergePlatforms(tt.existing, tt.incoming))
		})
	}
}

func TestMergePlatformsCommutative(t *testing.T) {
	a := MergePlatforms(MergePlatforms("", "PS4"), "PS5")
	b := MergePlatforms(MergePlatforms("", "PS5"), "PS4")
	assert.Equal(t, a, b)

	// Re-merging an already-present tag changes nothing.
	assert.Equal(t, a, MergePlatforms(a, "PS4"))
}

func TestComputeMergeFillsAbsentSlots(t *testing.T) {
	existing := &models.Game{Name: "Hades", SteamAppID: strPtr("1145360"), Platforms: "PC"}

	updates := ComputeMerge(existing, Candidate{
		Name:     "Hades",
		PSNID:    "NPWR20188_00",
		Platform: "PS5",
	})

	assert.Equal(t, map[string]any{
		"psn_id":    "NPWR20188_00",
		"platforms": "PC, PS5",
	}, updates)
}

func TestComputeMergeKeepsOccupiedSlots(t *testing.T) {
	// A second psnId for the same title is dropped; only the platform set
	// grows.
	existing := &models.Game{Name: "Bloodborne", PSNID: strPtr("NPWR00000_00"), Platforms: "PS4"}

	updates := ComputeMerge(existing, Candidate{
		Name:     "Bloodborne",
		PSNID:    "NPWR99999_00",
		Platform: "PS5",
	})

	assert.Equal(t, map[string]any{"platforms": "PS4, PS5"}, updates)
}

func TestComputeMergeNoopIsNil(t *testing.T) {
	existing := &models.Game{
		Name:       "Hades",
		SteamAppID: strPtr("1145360"),
		PSNID:      strPtr("NPWR20188_00"),
		Platforms:  "PC, PS5",
	}

	cand := Candidate{Name: "Hades", SteamAppID: "1145360", PSNID: "NPWR20188_00", Platform: "PS5"}

	assert.Nil(t, ComputeMerge(existing, cand))
}

func TestComputeMergeIdempotent(t *testing.T) {
	existing := &models.Game{Name: "Hades", SteamAppID: strPtr("1145360"), Platforms: "PC"}
	cand := Candidate{Name: "Hades", PSNID: "NPWR20188_00", Platform: "PS5"}

	updates := ComputeMerge(existing, cand)
	assert.NotNil(t, updates)

	// Apply the staged updates, then merge the same candidate again.
	existing.PSNID = strPtr(updates["psn_id"].(string))
	existing.Platforms = updates["platforms"].(string)

	assert.Nil(t, ComputeMerge(existing, cand))
}

func TestComputeMergeNeverTouchesUserFields(t *testing.T) {
	existing := &models.Game{Name: "Hades", PSNID: strPtr("NPWR20188_00"), Studio: "Supergiant Games"}

	updates := ComputeMerge(existing, Candidate{
		Name:     "Hades",
		PSNID:    "NPWR20188_00",
		Studio:   "Someone Else",
		Price:    59.99,
		Platform: "",
	})

	assert.Nil(t, updates)
}
