package library

import (
	"sort"
	"strings"

	"gameo/backend/internal/models"
)

// ComputeMerge compares an existing record with a candidate and returns the
// minimal set of column updates that unifies them, or nil when the candidate
// contributes nothing new (the "duplicate" outcome).
//
// Only identity and platform data is merged: an absent source-id slot is
// filled from the candidate, occupied slots are left alone (a second psnId
// for the same title is dropped), and platform tags are unioned. User-edited
// fields are never staged here.
func ComputeMerge(existing *models.Game, cand Candidate) map[string]any {
	updates := map[string]any{}

	if cand.SteamAppID != "" && existing.SteamAppID == nil {
		updates["steam_app_id"] = cand.SteamAppID
	}
	if cand.PSNID != "" && existing.PSNID == nil {
		updates["psn_id"] = cand.PSNID
	}

	if merged := MergePlatforms(existing.Platforms, cand.Platform); merged != existing.Platforms {
		updates["platforms"] = merged
	}

	if len(updates) == 0 {
		return nil
	}
	return updates
}

// MergePlatforms unions two comma-separated platform tag lists into a
// canonical form: tokens trimmed, upper-cased, deduplicated, sorted
// lexically and joined with ", ". The union is commutative and idempotent,
// so re-merging the same tags is a no-op.
func MergePlatforms(existing, incoming string) string {
	set := map[string]struct{}{}
	for _, raw := range strings.Split(existing+","+incoming, ",") {
		tag := strings.ToUpper(strings.TrimSpace(raw))
		if tag == "" {
			continue
		}
		set[tag] = struct{}{}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return strings.Join(tags, ", ")
}
