package service

import (
	"context"
	"testing"

	"campuslink/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setProfile(t *testing.T, db *gorm.DB, user *models.User, university, major string, interests []string) {
	t.Helper()
	user.University = university
	user.Major = major
	user.Interests = interests
	require.NoError(t, db.Save(user).Error)
}

func TestSuggestionsScoringWeights(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 5)
	me := &users[0]
	setProfile(t, db, me, "State University", "Computer Science", []string{"chess", "hiking"})

	// users[1]: same university only.
	setProfile(t, db, &users[1], "State University", "Biology", nil)
	// users[2]: same major only.
	setProfile(t, db, &users[2], "Tech Institute", "Computer Science", nil)
	// users[3]: two shared interests.
	setProfile(t, db, &users[3], "", "", []string{"Chess", "HIKING", "golf"})
	// users[4]: nothing in common.
	setProfile(t, db, &users[4], "Other", "History", []string{"golf"})

	suggestions, total, err := svc.Suggestions(context.Background(), me.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, suggestions, 3)

	byID := make(map[uint]Suggestion, len(suggestions))
	for _, s := range suggestions {
		byID[s.User.ID] = s
	}

	uni := byID[users[1].ID]
	assert.Equal(t, 20.0, uni.Score)
	assert.True(t, uni.CommonUniversity)
	assert.False(t, uni.CommonMajor)

	major := byID[users[2].ID]
	assert.Equal(t, 15.0, major.Score)
	assert.True(t, major.CommonMajor)

	interests := byID[users[3].ID]
	assert.Equal(t, 10.0, interests.Score)
	assert.Equal(t, []string{"chess", "hiking"}, interests.CommonInterests)

	// Zero scorers never make the list.
	_, present := byID[users[4].ID]
	assert.False(t, present)
}

func TestSuggestionsMutualWeight(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 4)
	me := users[0].ID
	candidate := users[1].ID

	// Two shared neighbors: 2 * 10 points.
	connect(t, svc, me, users[2].ID)
	connect(t, svc, candidate, users[2].ID)
	connect(t, svc, me, users[3].ID)
	connect(t, svc, candidate, users[3].ID)

	suggestions, total, err := svc.Suggestions(context.Background(), me, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, suggestions, 1)
	assert.Equal(t, candidate, suggestions[0].User.ID)
	assert.Equal(t, 2, suggestions[0].MutualConnectionsCount)
	assert.Equal(t, 20.0, suggestions[0].Score)
}

func TestSuggestionsExcludeRelated(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 5)
	me := &users[0]
	setProfile(t, db, me, "State University", "", nil)
	for i := 1; i < 5; i++ {
		setProfile(t, db, &users[i], "State University", "", nil)
	}

	connect(t, svc, me.ID, users[1].ID) // accepted
	_, err := svc.Request(context.Background(), me.ID, users[2].ID) // pending
	require.NoError(t, err)
	_, err = svc.Block(context.Background(), users[3].ID, me.ID) // blocked, other direction
	require.NoError(t, err)

	suggestions, total, err := svc.Suggestions(context.Background(), me.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, suggestions, 1)
	assert.Equal(t, users[4].ID, suggestions[0].User.ID)
}

func TestSuggestionsRejectedStaysEligible(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 2)
	setProfile(t, db, &users[0], "State University", "", nil)
	setProfile(t, db, &users[1], "State University", "", nil)

	conn, err := svc.Request(context.Background(), users[0].ID, users[1].ID)
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), conn.ID, users[1].ID, models.StatusRejected)
	require.NoError(t, err)

	suggestions, total, err := svc.Suggestions(context.Background(), users[0].ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, users[1].ID, suggestions[0].User.ID)
}

func TestSuggestionsOrderAndTieBreak(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 4)
	me := &users[0]
	setProfile(t, db, me, "State University", "Computer Science", nil)

	setProfile(t, db, &users[1], "State University", "", nil) // 20
	setProfile(t, db, &users[2], "", "Computer Science", nil) // 15
	setProfile(t, db, &users[3], "State University", "", nil) // 20, higher id

	suggestions, _, err := svc.Suggestions(context.Background(), me.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	// Score descending, then id ascending on the 20-point tie.
	assert.Equal(t, users[1].ID, suggestions[0].User.ID)
	assert.Equal(t, users[3].ID, suggestions[1].User.ID)
	assert.Equal(t, users[2].ID, suggestions[2].User.ID)
}

func TestSuggestionsPaginationScoresFullPool(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 5)
	me := &users[0]
	setProfile(t, db, me, "State University", "", nil)
	for i := 1; i < 5; i++ {
		setProfile(t, db, &users[i], "State University", "", nil)
	}

	first, total, err := svc.Suggestions(context.Background(), me.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, first, 2)

	second, total, err := svc.Suggestions(context.Background(), me.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, second, 2)
	assert.Less(t, first[1].User.ID, second[0].User.ID)

	past, total, err := svc.Suggestions(context.Background(), me.ID, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, past)
}

func TestSuggestionsExcludeInactive(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 3)
	me := &users[0]
	setProfile(t, db, me, "State University", "", nil)
	setProfile(t, db, &users[1], "State University", "", nil)
	setProfile(t, db, &users[2], "State University", "", nil)

	require.NoError(t, db.Model(&users[2]).Update("is_active", false).Error)

	suggestions, total, err := svc.Suggestions(context.Background(), me.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, users[1].ID, suggestions[0].User.ID)
}
