package service

import (
	"context"
	"errors"
	"time"

	"campuslink/backend/internal/apperrors"
	"campuslink/backend/internal/cache"
	"campuslink/backend/internal/models"

	"gorm.io/gorm"
)

// ConnectionService owns the connection state machine:
//
//	none -> pending -> {accepted, rejected}
//	any  -> blocked (overwrite)
//	blocked -> none (unblock deletes the row)
//	accepted -> none (remove deletes the row)
//
// Every check-then-write sequence runs inside a transaction, and the unique
// index on Connection.PairKey is the storage-level backstop: a duplicate-key
// error from a race is translated to the same ErrConflict a pre-check raises.
type ConnectionService struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewConnectionService(db *gorm.DB, c *cache.Cache) *ConnectionService {
	return &ConnectionService{db: db, cache: c}
}

// ConnectionStats summarizes a user's relationship rows.
type ConnectionStats struct {
	TotalConnections int64 `json:"total_connections"`
	PendingReceived  int64 `json:"pending_received"`
	PendingSent      int64 `json:"pending_sent"`
	BlockedUsers     int64 `json:"blocked_users"`
}

// activeUser loads a user that exists and is active, or ErrNotFound.
func activeUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	err := tx.Where("id = ? AND is_active = ?", userID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("user %d", userID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Between returns the connection row for the unordered pair, or ErrNotFound.
func (s *ConnectionService) Between(userA, userB uint) (*models.Connection, error) {
	var conn models.Connection
	err := s.db.Preload("Requester").Preload("Addressee").
		Where("pair_key = ?", models.PairKeyFor(userA, userB)).
		First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("no connection between %d and %d", userA, userB)
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// Request creates a pending connection from requester to addressee.
func (s *ConnectionService) Request(ctx context.Context, requesterID, addresseeID uint) (*models.Connection, error) {
	if requesterID == addresseeID {
		return nil, apperrors.SelfReferencef("cannot send a connection request to yourself")
	}

	var created models.Connection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := activeUser(tx, addresseeID); err != nil {
			return err
		}

		var existing models.Connection
		err := tx.Where("pair_key = ?", models.PairKeyFor(requesterID, addresseeID)).First(&existing).Error
		if err == nil {
			if existing.Status == models.StatusBlocked {
				return apperrors.Forbiddenf("cannot send a request within a blocked pair")
			}
			return apperrors.Conflictf("connection already %s", existing.Status)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		created = models.Connection{
			RequesterID: requesterID,
			AddresseeID: addresseeID,
			Status:      models.StatusPending,
		}
		if err := tx.Create(&created).Error; err != nil {
			// A concurrent request slipped past the pre-check; the pair_key
			// index catches it.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflictf("connection already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSuggestions(ctx, requesterID, addresseeID)
	return &created, nil
}

// Respond accepts or rejects a pending request. Only the addressee may act.
func (s *ConnectionService) Respond(ctx context.Context, connectionID, actingUserID uint, decision models.ConnectionStatus) (*models.Connection, error) {
	if decision != models.StatusAccepted && decision != models.StatusRejected {
		return nil, apperrors.Validationf("decision must be accepted or rejected")
	}

	var conn models.Connection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND addressee_id = ? AND status = ?",
			connectionID, actingUserID, models.StatusPending).First(&conn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("pending connection %d addressed to user %d", connectionID, actingUserID)
		}
		if err != nil {
			return err
		}

		now := time.Now()
		conn.Status = decision
		conn.RespondedAt = &now
		return tx.Save(&conn).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSuggestions(ctx, conn.RequesterID, conn.AddresseeID)
	return &conn, nil
}

// Cancel deletes a pending request. Only the original requester may cancel.
func (s *ConnectionService) Cancel(ctx context.Context, connectionID, actingUserID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conn models.Connection
		err := tx.Where("id = ? AND status = ?", connectionID, models.StatusPending).First(&conn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("pending connection %d", connectionID)
		}
		if err != nil {
			return err
		}
		if conn.RequesterID != actingUserID {
			return apperrors.Forbiddenf("only the requester may cancel a pending request")
		}
		return tx.Delete(&conn).Error
	})
	if err != nil {
		return err
	}
	s.invalidateSuggestions(ctx, actingUserID)
	return nil
}

// Remove deletes the connection between two users. Either party may remove an
// accepted or rejected row; a pending row falls back to the cancel rule, and
// blocked rows can only be lifted through Unblock.
func (s *ConnectionService) Remove(ctx context.Context, actingUserID, otherUserID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conn models.Connection
		err := tx.Where("pair_key = ?", models.PairKeyFor(actingUserID, otherUserID)).First(&conn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("no connection with user %d", otherUserID)
		}
		if err != nil {
			return err
		}

		switch conn.Status {
		case models.StatusPending:
			if conn.RequesterID != actingUserID {
				return apperrors.Forbiddenf("only the requester may cancel a pending request")
			}
		case models.StatusBlocked:
			return apperrors.Forbiddenf("blocked connections are lifted through unblock")
		}
		return tx.Delete(&conn).Error
	})
	if err != nil {
		return err
	}
	s.invalidateSuggestions(ctx, actingUserID, otherUserID)
	return nil
}

// Block marks the pair blocked, overwriting any prior status. Idempotent: an
// already-blocked pair is re-stamped with the blocker as requester.
func (s *ConnectionService) Block(ctx context.Context, blockerID, blockedID uint) (*models.Connection, error) {
	if blockerID == blockedID {
		return nil, apperrors.SelfReferencef("cannot block yourself")
	}

	var conn models.Connection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := activeUser(tx, blockedID); err != nil {
			return err
		}

		err := tx.Where("pair_key = ?", models.PairKeyFor(blockerID, blockedID)).First(&conn).Error
		if err == nil {
			// Overwrite whatever was there; direction records who blocked.
			conn.RequesterID = blockerID
			conn.AddresseeID = blockedID
			conn.Status = models.StatusBlocked
			conn.RespondedAt = nil
			return tx.Save(&conn).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		conn = models.Connection{
			RequesterID: blockerID,
			AddresseeID: blockedID,
			Status:      models.StatusBlocked,
		}
		if err := tx.Create(&conn).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflictf("connection changed concurrently")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSuggestions(ctx, blockerID, blockedID)
	return &conn, nil
}

// Unblock deletes a blocked row involving the unblocker. The relationship
// resets to none; it does not revert to any prior status.
func (s *ConnectionService) Unblock(ctx context.Context, unblockerID, blockedPartyID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conn models.Connection
		err := tx.Where("pair_key = ? AND status = ?",
			models.PairKeyFor(unblockerID, blockedPartyID), models.StatusBlocked).First(&conn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("user %d is not blocked", blockedPartyID)
		}
		if err != nil {
			return err
		}
		return tx.Delete(&conn).Error
	})
	if err != nil {
		return err
	}
	s.invalidateSuggestions(ctx, unblockerID, blockedPartyID)
	return nil
}

// ListConnections returns a user's accepted connections, newest first, with
// both parties preloaded.
func (s *ConnectionService) ListConnections(userID uint, limit, offset int) ([]models.Connection, int64, error) {
	query := s.db.Model(&models.Connection{}).
		Where("(requester_id = ? OR addressee_id = ?) AND status = ?", userID, userID, models.StatusAccepted)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var conns []models.Connection
	err := query.Preload("Requester").Preload("Addressee").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).Find(&conns).Error
	return conns, total, err
}

// PendingReceived returns pending requests addressed to the user.
func (s *ConnectionService) PendingReceived(userID uint, limit, offset int) ([]models.Connection, int64, error) {
	return s.listPending(userID, "addressee_id", limit, offset)
}

// PendingSent returns pending requests the user has sent.
func (s *ConnectionService) PendingSent(userID uint, limit, offset int) ([]models.Connection, int64, error) {
	return s.listPending(userID, "requester_id", limit, offset)
}

func (s *ConnectionService) listPending(userID uint, column string, limit, offset int) ([]models.Connection, int64, error) {
	query := s.db.Model(&models.Connection{}).
		Where(column+" = ? AND status = ?", userID, models.StatusPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var conns []models.Connection
	err := query.Preload("Requester").Preload("Addressee").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).Find(&conns).Error
	return conns, total, err
}

// Stats counts a user's rows by status.
func (s *ConnectionService) Stats(userID uint) (*ConnectionStats, error) {
	stats := &ConnectionStats{}
	pair := "(requester_id = ? OR addressee_id = ?)"

	err := s.db.Model(&models.Connection{}).
		Where(pair+" AND status = ?", userID, userID, models.StatusAccepted).
		Count(&stats.TotalConnections).Error
	if err != nil {
		return nil, err
	}
	err = s.db.Model(&models.Connection{}).
		Where("addressee_id = ? AND status = ?", userID, models.StatusPending).
		Count(&stats.PendingReceived).Error
	if err != nil {
		return nil, err
	}
	err = s.db.Model(&models.Connection{}).
		Where("requester_id = ? AND status = ?", userID, models.StatusPending).
		Count(&stats.PendingSent).Error
	if err != nil {
		return nil, err
	}
	err = s.db.Model(&models.Connection{}).
		Where(pair+" AND status = ?", userID, userID, models.StatusBlocked).
		Count(&stats.BlockedUsers).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// IsConnected reports whether an accepted connection exists between two users.
func (s *ConnectionService) IsConnected(userA, userB uint) (bool, error) {
	if userA == userB {
		return true, nil
	}
	var count int64
	err := s.db.Model(&models.Connection{}).
		Where("pair_key = ? AND status = ?", models.PairKeyFor(userA, userB), models.StatusAccepted).
		Count(&count).Error
	return count > 0, err
}

// acceptedNeighborIDs returns the ids of users with an accepted connection
// touching userID, restricted to active users.
func acceptedNeighborIDs(tx *gorm.DB, userID uint) ([]uint, error) {
	var conns []models.Connection
	err := tx.Where("(requester_id = ? OR addressee_id = ?) AND status = ?",
		userID, userID, models.StatusAccepted).Find(&conns).Error
	if err != nil {
		return nil, err
	}
	if len(conns) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.OtherUserID(userID))
	}

	var activeIDs []uint
	err = tx.Model(&models.User{}).
		Where("id IN ? AND is_active = ?", ids, true).
		Pluck("id", &activeIDs).Error
	return activeIDs, err
}

func (s *ConnectionService) invalidateSuggestions(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, cache.SuggestionKey(id))
	}
	s.cache.Delete(ctx, keys...)
}
