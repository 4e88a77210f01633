package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutualConnections(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 5)
	a, b := users[0].ID, users[1].ID

	// users[2] and users[3] know both endpoints, users[4] only knows a.
	connect(t, svc, a, users[2].ID)
	connect(t, svc, b, users[2].ID)
	connect(t, svc, a, users[3].ID)
	connect(t, svc, b, users[3].ID)
	connect(t, svc, a, users[4].ID)

	// A direct connection between the endpoints must not count itself.
	connect(t, svc, a, b)

	mutual, total, err := svc.MutualConnections(a, b, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, mutual, 2)
	assert.Equal(t, users[2].ID, mutual[0].ID)
	assert.Equal(t, users[3].ID, mutual[1].ID)
}

func TestMutualConnectionsSymmetric(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 4)
	a, b := users[0].ID, users[1].ID

	connect(t, svc, a, users[2].ID)
	connect(t, svc, users[2].ID, b)
	connect(t, svc, users[3].ID, a)
	connect(t, svc, b, users[3].ID)

	forward, totalF, err := svc.MutualConnections(a, b, 10, 0)
	require.NoError(t, err)
	backward, totalB, err := svc.MutualConnections(b, a, 10, 0)
	require.NoError(t, err)

	assert.Equal(t, totalF, totalB)
	require.Equal(t, len(forward), len(backward))
	for i := range forward {
		assert.Equal(t, forward[i].ID, backward[i].ID)
	}
}

func TestMutualConnectionsExcludesInactive(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 4)
	a, b := users[0].ID, users[1].ID

	connect(t, svc, a, users[2].ID)
	connect(t, svc, b, users[2].ID)
	connect(t, svc, a, users[3].ID)
	connect(t, svc, b, users[3].ID)

	require.NoError(t, db.Model(&users[3]).Update("is_active", false).Error)

	mutual, total, err := svc.MutualConnections(a, b, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, mutual, 1)
	assert.Equal(t, users[2].ID, mutual[0].ID)
}

func TestMutualConnectionsPagination(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 6)
	a, b := users[0].ID, users[1].ID

	for _, u := range users[2:] {
		connect(t, svc, a, u.ID)
		connect(t, svc, b, u.ID)
	}

	first, total, err := svc.MutualConnections(a, b, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, first, 2)

	second, _, err := svc.MutualConnections(a, b, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Less(t, first[1].ID, second[0].ID)

	past, total, err := svc.MutualConnections(a, b, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, past)
}

func TestMutualConnectionsNoOverlap(t *testing.T) {
	svc, db := newConnectionService(t)
	users := createUsers(t, db, 4)

	connect(t, svc, users[0].ID, users[2].ID)
	connect(t, svc, users[1].ID, users[3].ID)

	mutual, total, err := svc.MutualConnections(users[0].ID, users[1].ID, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, mutual)
}
