package service

import (
	"context"
	"strings"
	"testing"

	"campuslink/backend/internal/apperrors"
	"campuslink/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPost(t *testing.T, svc *PostService, userID uint, privacy models.PostPrivacy) *models.Post {
	t.Helper()
	post, err := svc.Create(context.Background(), userID, PostInput{
		Content: "hello campus",
		Privacy: privacy,
	})
	require.NoError(t, err)
	return post
}

func TestCreatePostDefaultsPublic(t *testing.T) {
	svc, _, db := newPostService(t)
	user := createUser(t, db, "author")

	post, err := svc.Create(context.Background(), user.ID, PostInput{Content: "first"})
	require.NoError(t, err)
	assert.Equal(t, models.PrivacyPublic, post.Privacy)
	assert.True(t, post.IsActive)
	assert.Zero(t, post.LikesCount)
	assert.Zero(t, post.CommentsCount)
}

func TestCreatePostValidation(t *testing.T) {
	svc, _, db := newPostService(t)
	user := createUser(t, db, "author")

	_, err := svc.Create(context.Background(), user.ID, PostInput{Content: ""})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	tooLong := strings.Repeat("a", models.PostContentMaxLen+1)
	_, err = svc.Create(context.Background(), user.ID, PostInput{Content: tooLong})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Limit counts runes, not bytes.
	exactly := strings.Repeat("ü", models.PostContentMaxLen)
	_, err = svc.Create(context.Background(), user.ID, PostInput{Content: exactly})
	assert.NoError(t, err)

	media := make([]string, models.PostMediaMaxItems+1)
	for i := range media {
		media[i] = "https://cdn.example.com/img.png"
	}
	_, err = svc.Create(context.Background(), user.ID, PostInput{Content: "x", MediaURLs: media})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(context.Background(), user.ID, PostInput{Content: "x", Privacy: "friends"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	svc, _, db := newPostService(t)
	users := createUsers(t, db, 2)
	post := createPost(t, svc, users[0].ID, models.PrivacyPublic)

	newContent := "edited"
	_, err := svc.Update(context.Background(), post.ID, users[1].ID, PostUpdate{Content: &newContent})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := svc.Update(context.Background(), post.ID, users[0].ID, PostUpdate{Content: &newContent})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, models.PrivacyPublic, updated.Privacy)
}

func TestDeletePostSoftDelete(t *testing.T) {
	svc, _, db := newPostService(t)
	users := createUsers(t, db, 2)
	post := createPost(t, svc, users[0].ID, models.PrivacyPublic)

	err := svc.Delete(context.Background(), post.ID, users[1].ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), post.ID, users[0].ID))

	// Soft deleted: the row survives, reads treat it as gone.
	var raw models.Post
	require.NoError(t, db.First(&raw, post.ID).Error)
	assert.False(t, raw.IsActive)

	_, err = svc.GetByID(context.Background(), post.ID, &users[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCanViewMatrix(t *testing.T) {
	svc, connections, db := newPostService(t)
	users := createUsers(t, db, 3)
	author, friend, stranger := users[0].ID, users[1].ID, users[2].ID
	connect(t, connections, author, friend)

	public := createPost(t, svc, author, models.PrivacyPublic)
	connOnly := createPost(t, svc, author, models.PrivacyConnections)
	private := createPost(t, svc, author, models.PrivacyPrivate)

	cases := []struct {
		name   string
		viewer *uint
		post   *models.Post
		want   bool
	}{
		{"anonymous sees public", nil, public, true},
		{"anonymous blocked from connections", nil, connOnly, false},
		{"anonymous blocked from private", nil, private, false},
		{"friend sees public", &friend, public, true},
		{"friend sees connections", &friend, connOnly, true},
		{"friend blocked from private", &friend, private, false},
		{"stranger sees public", &stranger, public, true},
		{"stranger blocked from connections", &stranger, connOnly, false},
		{"author sees private", &author, private, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.CanView(tc.viewer, tc.post)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCanViewInactivePost(t *testing.T) {
	svc, _, db := newPostService(t)
	user := createUser(t, db, "author")
	post := createPost(t, svc, user.ID, models.PrivacyPublic)
	require.NoError(t, svc.Delete(context.Background(), post.ID, user.ID))
	post.IsActive = false

	// Even the author cannot view a deleted post.
	visible, err := svc.CanView(&user.ID, post)
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestGetByIDHidesInvisible(t *testing.T) {
	svc, _, db := newPostService(t)
	users := createUsers(t, db, 2)
	private := createPost(t, svc, users[0].ID, models.PrivacyPrivate)

	// Invisible posts are indistinguishable from missing ones.
	_, err := svc.GetByID(context.Background(), private.ID, &users[1].ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := svc.GetByID(context.Background(), private.ID, &users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, got.ID)
	assert.Equal(t, users[0].ID, got.Author.ID)
}

func TestUserPostsFiltersByViewer(t *testing.T) {
	svc, connections, db := newPostService(t)
	users := createUsers(t, db, 3)
	author, friend, stranger := users[0].ID, users[1].ID, users[2].ID
	connect(t, connections, author, friend)

	createPost(t, svc, author, models.PrivacyPublic)
	createPost(t, svc, author, models.PrivacyConnections)
	createPost(t, svc, author, models.PrivacyPrivate)

	own, total, err := svc.UserPosts(context.Background(), author, &author, 10, 0)
	require.NoError(t, err)
	assert.Len(t, own, 3)
	assert.EqualValues(t, 3, total)

	asFriend, total, err := svc.UserPosts(context.Background(), author, &friend, 10, 0)
	require.NoError(t, err)
	assert.Len(t, asFriend, 2)
	assert.EqualValues(t, 2, total)

	asStranger, total, err := svc.UserPosts(context.Background(), author, &stranger, 10, 0)
	require.NoError(t, err)
	assert.Len(t, asStranger, 1)
	assert.EqualValues(t, 1, total)

	anonymous, total, err := svc.UserPosts(context.Background(), author, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, anonymous, 1)
	assert.EqualValues(t, 1, total)
}

func TestPublicPostsListing(t *testing.T) {
	svc, _, db := newPostService(t)
	users := createUsers(t, db, 2)

	visible := createPost(t, svc, users[0].ID, models.PrivacyPublic)
	createPost(t, svc, users[1].ID, models.PrivacyConnections)
	deleted := createPost(t, svc, users[1].ID, models.PrivacyPublic)
	require.NoError(t, svc.Delete(context.Background(), deleted.ID, users[1].ID))

	posts, total, err := svc.PublicPosts(context.Background(), nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, visible.ID, posts[0].ID)
}

func TestListingTotalsSpanPages(t *testing.T) {
	svc, _, db := newPostService(t)
	user := createUser(t, db, "author")

	for i := 0; i < 3; i++ {
		createPost(t, svc, user.ID, models.PrivacyPublic)
	}

	// The total reflects every matching post, not the page size.
	page, total, err := svc.PublicPosts(context.Background(), nil, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.EqualValues(t, 3, total)

	page, total, err = svc.UserPosts(context.Background(), user.ID, nil, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.EqualValues(t, 3, total)

	page, total, err = svc.Feed(context.Background(), user.ID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.EqualValues(t, 3, total)
}

func TestFeedComposition(t *testing.T) {
	svc, connections, db := newPostService(t)
	users := createUsers(t, db, 4)
	me, friend, friend2, stranger := users[0].ID, users[1].ID, users[2].ID, users[3].ID
	connect(t, connections, me, friend)
	connect(t, connections, friend2, me)

	ownPrivate := createPost(t, svc, me, models.PrivacyPrivate)
	friendPublic := createPost(t, svc, friend, models.PrivacyPublic)
	friendConn := createPost(t, svc, friend, models.PrivacyConnections)
	createPost(t, svc, friend, models.PrivacyPrivate) // never in someone else's feed
	friend2Public := createPost(t, svc, friend2, models.PrivacyPublic)
	createPost(t, svc, stranger, models.PrivacyPublic) // not connected

	feed, total, err := svc.Feed(context.Background(), me, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)

	ids := make([]uint, len(feed))
	for i, p := range feed {
		ids[i] = p.ID
	}
	assert.ElementsMatch(t, []uint{ownPrivate.ID, friendPublic.ID, friendConn.ID, friend2Public.ID}, ids)

	// Newest first; equal timestamps fall back to id descending.
	for i := 1; i < len(feed); i++ {
		if feed[i-1].CreatedAt.Equal(feed[i].CreatedAt) {
			assert.Greater(t, feed[i-1].ID, feed[i].ID)
		} else {
			assert.True(t, feed[i-1].CreatedAt.After(feed[i].CreatedAt))
		}
	}
}

func TestFeedSkipsInactiveAuthors(t *testing.T) {
	svc, connections, db := newPostService(t)
	users := createUsers(t, db, 2)
	connect(t, connections, users[0].ID, users[1].ID)
	createPost(t, svc, users[1].ID, models.PrivacyPublic)

	require.NoError(t, db.Model(&users[1]).Update("is_active", false).Error)

	feed, total, err := svc.Feed(context.Background(), users[0].ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, feed)
	assert.Zero(t, total)
}

func TestFeedMarksLikedPosts(t *testing.T) {
	svc, connections, db := newPostService(t)
	users := createUsers(t, db, 2)
	connect(t, connections, users[0].ID, users[1].ID)

	liked := createPost(t, svc, users[1].ID, models.PrivacyPublic)
	createPost(t, svc, users[1].ID, models.PrivacyPublic)

	_, err := svc.ToggleLike(context.Background(), liked.ID, users[0].ID)
	require.NoError(t, err)

	feed, _, err := svc.Feed(context.Background(), users[0].ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	for _, p := range feed {
		assert.Equal(t, p.ID == liked.ID, p.IsLiked)
	}
}
