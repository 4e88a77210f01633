package service

import (
	"sort"

	"campuslink/backend/internal/models"
)

// MutualConnections returns the users connected (accepted) to both userA and
// userB, excluding the two endpoints. Ordering is by user id ascending so
// pagination stays stable across calls; the result is symmetric in its
// arguments.
func (s *ConnectionService) MutualConnections(userA, userB uint, limit, offset int) ([]models.User, int, error) {
	neighborsA, err := acceptedNeighborIDs(s.db, userA)
	if err != nil {
		return nil, 0, err
	}
	neighborsB, err := acceptedNeighborIDs(s.db, userB)
	if err != nil {
		return nil, 0, err
	}

	inA := make(map[uint]struct{}, len(neighborsA))
	for _, id := range neighborsA {
		inA[id] = struct{}{}
	}

	mutual := make([]uint, 0)
	for _, id := range neighborsB {
		if id == userA || id == userB {
			continue
		}
		if _, ok := inA[id]; ok {
			mutual = append(mutual, id)
		}
	}
	sort.Slice(mutual, func(i, j int) bool { return mutual[i] < mutual[j] })

	total := len(mutual)
	if offset >= total {
		return []models.User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := mutual[offset:end]
	if len(page) == 0 {
		return []models.User{}, total, nil
	}

	var users []models.User
	err = s.db.Where("id IN ? AND is_active = ?", page, true).
		Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// mutualCountsAround returns, for every user with an accepted edge into the
// given neighbor set, how many of those neighbors they touch. One pass over
// the edges incident to the set, instead of recomputing an intersection per
// candidate.
func (s *ConnectionService) mutualCountsAround(neighborIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int)
	if len(neighborIDs) == 0 {
		return counts, nil
	}

	inSet := make(map[uint]struct{}, len(neighborIDs))
	for _, id := range neighborIDs {
		inSet[id] = struct{}{}
	}

	var edges []models.Connection
	err := s.db.Where("(requester_id IN ? OR addressee_id IN ?) AND status = ?",
		neighborIDs, neighborIDs, models.StatusAccepted).Find(&edges).Error
	if err != nil {
		return nil, err
	}

	for _, e := range edges {
		if _, ok := inSet[e.RequesterID]; ok {
			counts[e.AddresseeID]++
		}
		if _, ok := inSet[e.AddresseeID]; ok {
			counts[e.RequesterID]++
		}
	}
	return counts, nil
}
