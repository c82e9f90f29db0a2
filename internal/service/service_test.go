package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"

	"github.com/avmusatov/tunebase/internal/apperr"
	"github.com/avmusatov/tunebase/internal/auth"
	"github.com/avmusatov/tunebase/internal/db/storage"
	"github.com/avmusatov/tunebase/internal/hasher"
	"github.com/avmusatov/tunebase/internal/mockstorage"
	"github.com/avmusatov/tunebase/internal/models"
)

func newTestService(db *mockstorage.StorageMock) *Service {
	return New(
		db,
		hasher.New(bcrypt.MinCost),
		auth.New([]byte("test signing key"), time.Minute),
	)
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, kind, appErr.Kind())
}

func TestRegisterUser(t *testing.T) {
	db := new(mockstorage.StorageMock)
	svc := newTestService(db)

	var storedUser *models.User
	db.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			storedUser = args.Get(1).(*models.User)
		}).
		Return("user-1", nil)

	result, err := svc.RegisterUser(context.Background(), &models.CreateUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	assert.Equal(t, "user-1", result.UserID)
	assert.NotEmpty(t, result.AccessToken)

	require.NotNil(t, storedUser)
	assert.NotEmpty(t, storedUser.ID)
	assert.NotEqual(t, "correct horse battery staple", storedUser.PasswordHash,
		"the plaintext password must never be persisted")
	assert.NotContains(t, storedUser.PasswordHash, "correct horse battery staple")
}

func TestCreateSongValidation(t *testing.T) {
	validRequest := func() *models.CreateSongRequest {
		return &models.CreateSongRequest{
			Title:       "Bohemian Rhapsody",
			Artist:      "Queen",
			Album:       "A Night at the Opera",
			Duration:    354,
			Genre:       "rock",
			ReleaseDate: "1975-10-31T00:00:00Z",
			AudioURL:    "https://cdn.example.com/bohemian.mp3",
		}
	}

	t.Run("negative duration is a bad request without a write", func(t *testing.T) {
		db := new(mockstorage.StorageMock)
		svc := newTestService(db)

		req := validRequest()
		req.Duration = -1

		_, err := svc.CreateSong(context.Background(), req)
		requireKind(t, err, apperr.KindBadRequest)
		db.AssertNotCalled(t, "CreateSong", mock.Anything, mock.Anything)
	})

	t.Run("unparsable release date is a bad request", func(t *testing.T) {
		db := new(mockstorage.StorageMock)
		svc := newTestService(db)

		req := validRequest()
		req.ReleaseDate = "31 October 1975"

		_, err := svc.CreateSong(context.Background(), req)
		requireKind(t, err, apperr.KindBadRequest)
	})

	t.Run("valid song is stored with a parsed date", func(t *testing.T) {
		db := new(mockstorage.StorageMock)
		svc := newTestService(db)

		var storedSong *models.Song
		db.On("CreateSong", mock.Anything, mock.AnythingOfType("*models.Song")).
			Run(func(args mock.Arguments) {
				storedSong = args.Get(1).(*models.Song)
			}).
			Return("song-1", nil)

		result, err := svc.CreateSong(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, "song-1", result.SongID)

		require.NotNil(t, storedSong)
		assert.Equal(t, 1975, storedSong.ReleaseDate.Year())
	})
}

func TestSearchSongs(t *testing.T) {
	t.Run("single-character query is a bad request without a scan", func(t *testing.T) {
		db := new(mockstorage.StorageMock)
		svc := newTestService(db)

		_, err := svc.SearchSongs(context.Background(), "q", 1, 20)
		requireKind(t, err, apperr.KindBadRequest)
		db.AssertNotCalled(t, "SearchSongs", mock.Anything, mock.Anything)
	})

	t.Run("pagination slices stable-sorted results", func(t *testing.T) {
		db := new(mockstorage.StorageMock)
		svc := newTestService(db)

		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		db.On("SearchSongs", mock.Anything, "queen").Return([]models.Song{
			{ID: "song-3", Title: "c", CreatedAt: base.Add(2 * time.Hour)},
			{ID: "song-1", Title: "a", CreatedAt: base},
			{ID: "song-2", Title: "b", CreatedAt: base.Add(time.Hour)},
		}, nil)

		page1, err := svc.SearchSongs(context.Background(), "queen", 1, 2)
		require.NoError(t, err)
		require.Len(t, page1, 2)
		assert.Equal(t, "song-1", page1[0].ID)
		assert.Equal(t, "song-2", page1[1].ID)

		page2, err := svc.SearchSongs(context.Background(), "queen", 2, 2)
		require.NoError(t, err)
		require.Len(t, page2, 1)
		assert.Equal(t, "song-3", page2[0].ID)

		page3, err := svc.SearchSongs(context.Background(), "queen", 3, 2)
		require.NoError(t, err)
		assert.Empty(t, page3)
	})
}

func TestCreatePlaylistReferenceIntegrity(t *testing.T) {
	t.Run("unknown song reference rejects without a write", func(t *testing.T) {
		db := new(mockstorage.StorageMock)
		svc := newTestService(db)

		db.On("FindMissingSongs", mock.Anything, []string{"song-1", "song-2"}).
			Return([]string{"song-2"}, nil)

		_, err := svc.CreatePlaylist(context.Background(), "user-1", &models.CreatePlaylistRequest{
			Name:  "Road Trip",
			Songs: []string{"song-1", "song-2"},
		})
		requireKind(t, err, apperr.KindBadRequest)
		assert.Contains(t, err.Error(), "song-2")
		db.AssertNotCalled(t, "CreatePlaylist", mock.Anything, mock.Anything)
	})

	t.Run("owner is always the authenticated identity", func(t *testing.T) {
		db := new(mockstorage.StorageMock)
		svc := newTestService(db)

		var storedPlaylist *models.Playlist
		db.On("CreatePlaylist", mock.Anything, mock.AnythingOfType("*models.Playlist")).
			Run(func(args mock.Arguments) {
				storedPlaylist = args.Get(1).(*models.Playlist)
			}).
			Return("playlist-1", nil)

		result, err := svc.CreatePlaylist(context.Background(), "user-1", &models.CreatePlaylistRequest{
			Name: "Road Trip",
		})
		require.NoError(t, err)
		assert.Equal(t, "playlist-1", result.PlaylistID)

		require.NotNil(t, storedPlaylist)
		assert.Equal(t, "user-1", storedPlaylist.OwnerID)
		assert.NotNil(t, storedPlaylist.Songs)
	})
}

func TestUpdatePlaylistAuthorization(t *testing.T) {
	existing := func() *models.Playlist {
		return &models.Playlist{
			ID:      "playlist-1",
			Name:    "Road Trip",
			OwnerID: "user-1",
			Songs:   []string{},
		}
	}
	newName := "Beach Party"

	t.Run("absent playlist is not found", func(t *testing.T) {
		db := new(mockstorage.StorageMock)
		svc := newTestService(db)

		db.On("GetPlaylistByID", mock.Anything, "nonexistent").
			Return(nil, storage.ErrNotFound)

		_, err := svc.UpdatePlaylist(context.Background(), "user-1", "nonexistent", &models.UpdatePlaylistRequest{Name: &newName})
		requireKind(t, err, apperr.KindNotFound)
	})

	t.Run("foreign owner is forbidden without a write", func(t *testing.T) {
		db := new(mockstorage.StorageMock)
		svc := newTestService(db)

		db.On("GetPlaylistByID", mock.Anything, "playlist-1").Return(existing(), nil)

		_, err := svc.UpdatePlaylist(context.Background(), "user-2", "playlist-1", &models.UpdatePlaylistRequest{Name: &newName})
		requireKind(t, err, apperr.KindForbidden)
		db.AssertNotCalled(t, "UpdatePlaylist", mock.Anything, mock.Anything)
	})

	t.Run("owner patch persists and bumps UpdatedAt", func(t *testing.T) {
		db := new(mockstorage.StorageMock)
		svc := newTestService(db)

		db.On("GetPlaylistByID", mock.Anything, "playlist-1").Return(existing(), nil)

		var updatedPlaylist *models.Playlist
		db.On("UpdatePlaylist", mock.Anything, mock.AnythingOfType("*models.Playlist")).
			Run(func(args mock.Arguments) {
				updatedPlaylist = args.Get(1).(*models.Playlist)
			}).
			Return(nil)

		_, err := svc.UpdatePlaylist(context.Background(), "user-1", "playlist-1", &models.UpdatePlaylistRequest{Name: &newName})
		require.NoError(t, err)

		require.NotNil(t, updatedPlaylist)
		assert.Equal(t, "Beach Party", updatedPlaylist.Name)
		assert.Equal(t, "user-1", updatedPlaylist.OwnerID, "ownership must never change")
		assert.False(t, updatedPlaylist.UpdatedAt.IsZero())
	})

	t.Run("patching songs revalidates references", func(t *testing.T) {
		db := new(mockstorage.StorageMock)
		svc := newTestService(db)

		db.On("GetPlaylistByID", mock.Anything, "playlist-1").Return(existing(), nil)
		db.On("FindMissingSongs", mock.Anything, []string{"song-9"}).
			Return([]string{"song-9"}, nil)

		songs := []string{"song-9"}
		_, err := svc.UpdatePlaylist(context.Background(), "user-1", "playlist-1", &models.UpdatePlaylistRequest{Songs: &songs})
		requireKind(t, err, apperr.KindBadRequest)
		db.AssertNotCalled(t, "UpdatePlaylist", mock.Anything, mock.Anything)
	})
}

func TestDeletePlaylistAuthorization(t *testing.T) {
	db := new(mockstorage.StorageMock)
	svc := newTestService(db)

	db.On("GetPlaylistByID", mock.Anything, "playlist-1").
		Return(&models.Playlist{ID: "playlist-1", OwnerID: "user-1"}, nil)

	err := svc.DeletePlaylist(context.Background(), "user-2", "playlist-1")
	requireKind(t, err, apperr.KindForbidden)
	db.AssertNotCalled(t, "DeletePlaylist", mock.Anything, mock.Anything)

	db.On("DeletePlaylist", mock.Anything, "playlist-1").Return(nil)
	err = svc.DeletePlaylist(context.Background(), "user-1", "playlist-1")
	assert.NoError(t, err)
}

func TestGetUserUnexpectedStorageError(t *testing.T) {
	db := new(mockstorage.StorageMock)
	svc := newTestService(db)

	db.On("GetUserByID", mock.Anything, "user-1").
		Return(nil, errors.New("storage unavailable"))

	_, err := svc.GetUser(context.Background(), "user-1")
	require.Error(t, err)

	var appErr *apperr.Error
	assert.False(t, errors.As(err, &appErr), "storage failures stay unclassified and surface as 500")
}

func TestGetStats(t *testing.T) {
	db := new(mockstorage.StorageMock)
	svc := newTestService(db)

	db.On("GetNumberOfUsers", mock.Anything).Return(int64(2), nil)
	db.On("GetNumberOfSongs", mock.Anything).Return(int64(5), nil)
	db.On("GetNumberOfPlaylists", mock.Anything).Return(int64(1), nil)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(5), stats.Songs)
	assert.Equal(t, int64(1), stats.Playlists)
}
