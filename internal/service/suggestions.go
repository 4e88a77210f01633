package service

import (
	"context"
	"sort"
	"strings"

	"campuslink/backend/internal/cache"
	"campuslink/backend/internal/models"
)

// Suggestion scoring weights. Additive; all terms computed independently.
const (
	scorePerMutual        = 10.0
	scoreCommonUniversity = 20.0
	scoreCommonMajor      = 15.0
	scorePerInterest      = 5.0
)

// Suggestion is a ranked connection candidate for a user.
type Suggestion struct {
	User                   models.User `json:"user"`
	MutualConnectionsCount int         `json:"mutual_connections_count"`
	CommonUniversity       bool        `json:"common_university"`
	CommonMajor            bool        `json:"common_major"`
	CommonInterests        []string    `json:"common_interests"`
	Score                  float64     `json:"suggestion_score"`
}

// Suggestions ranks connection candidates for a user. The entire eligible
// pool is scored and sorted before pagination, so ranking is stable across
// pages. Candidates: active users, excluding self and anyone already in a
// pending, accepted or blocked relationship with the user (either
// direction). Rejected pairs stay eligible. Zero-score candidates are
// dropped. Order: score descending, candidate id ascending.
//
// The scored list is cached in Redis; connection mutations invalidate it,
// and mild staleness is acceptable for this read path.
func (s *ConnectionService) Suggestions(ctx context.Context, userID uint, limit, offset int) ([]Suggestion, int, error) {
	var scored []Suggestion
	if !s.cache.GetJSON(ctx, cache.SuggestionKey(userID), &scored) {
		var err error
		scored, err = s.scoreSuggestions(userID)
		if err != nil {
			return nil, 0, err
		}
		s.cache.SetJSON(ctx, cache.SuggestionKey(userID), scored, cache.SuggestionTTL)
	}

	total := len(scored)
	if offset >= total {
		return []Suggestion{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return scored[offset:end], total, nil
}

func (s *ConnectionService) scoreSuggestions(userID uint) ([]Suggestion, error) {
	user, err := activeUser(s.db, userID)
	if err != nil {
		return nil, err
	}

	// Users already related to us in either direction, for the statuses that
	// exclude a candidate from the pool.
	var related []models.Connection
	err = s.db.Where("(requester_id = ? OR addressee_id = ?) AND status IN ?",
		userID, userID,
		[]models.ConnectionStatus{models.StatusPending, models.StatusAccepted, models.StatusBlocked}).
		Find(&related).Error
	if err != nil {
		return nil, err
	}

	excluded := map[uint]struct{}{userID: {}}
	for _, c := range related {
		excluded[c.OtherUserID(userID)] = struct{}{}
	}
	excludedIDs := make([]uint, 0, len(excluded))
	for id := range excluded {
		excludedIDs = append(excludedIDs, id)
	}

	var candidates []models.User
	err = s.db.Where("is_active = ? AND id NOT IN ?", true, excludedIDs).Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	neighbors, err := acceptedNeighborIDs(s.db, userID)
	if err != nil {
		return nil, err
	}
	mutualCounts, err := s.mutualCountsAround(neighbors)
	if err != nil {
		return nil, err
	}

	userInterests := lowerSet(user.Interests)

	scored := make([]Suggestion, 0, len(candidates))
	for _, candidate := range candidates {
		mutual := mutualCounts[candidate.ID]

		commonUniversity := user.University != "" && candidate.University != "" &&
			strings.EqualFold(user.University, candidate.University)
		commonMajor := user.Major != "" && candidate.Major != "" &&
			strings.EqualFold(user.Major, candidate.Major)
		commonInterests := intersectLower(userInterests, candidate.Interests)

		score := scorePerMutual * float64(mutual)
		if commonUniversity {
			score += scoreCommonUniversity
		}
		if commonMajor {
			score += scoreCommonMajor
		}
		score += scorePerInterest * float64(len(commonInterests))

		if score == 0 {
			continue
		}

		scored = append(scored, Suggestion{
			User:                   candidate,
			MutualConnectionsCount: mutual,
			CommonUniversity:       commonUniversity,
			CommonMajor:            commonMajor,
			CommonInterests:        commonInterests,
			Score:                  score,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].User.ID < scored[j].User.ID
	})
	return scored, nil
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

// intersectLower returns the lowercase values present in both sets, sorted
// for deterministic output.
func intersectLower(set map[string]struct{}, values []string) []string {
	var common []string
	seen := make(map[string]struct{})
	for _, v := range values {
		lower := strings.ToLower(v)
		if _, ok := set[lower]; !ok {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		common = append(common, lower)
	}
	sort.Strings(common)
	return common
}
