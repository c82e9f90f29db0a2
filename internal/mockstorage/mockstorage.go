// Package mockstorage provides a testify-based mock implementation of
// the document-store contract. It is used for unit testing HTTP
// handlers and services by simulating storage behavior and failures.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/avmusatov/tunebase/internal/models"
)

// StorageMock is a testify mock implementing storage.Storage.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks inserting a user document.
func (m *StorageMock) CreateUser(ctx context.Context, usr *models.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// GetUserByID mocks a single user read.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Error(1)
}

// CreateSong mocks inserting a song document.
func (m *StorageMock) CreateSong(ctx context.Context, song *models.Song) (string, error) {
	args := m.Called(ctx, song)
	return args.String(0), args.Error(1)
}

// GetSongByID mocks a single song read.
func (m *StorageMock) GetSongByID(ctx context.Context, songID string) (*models.Song, error) {
	args := m.Called(ctx, songID)
	song, _ := args.Get(0).(*models.Song)
	return song, args.Error(1)
}

// FindMissingSongs mocks the song reference existence check.
func (m *StorageMock) FindMissingSongs(ctx context.Context, songIDs []string) ([]string, error) {
	args := m.Called(ctx, songIDs)
	missing, _ := args.Get(0).([]string)
	return missing, args.Error(1)
}

// SearchSongs mocks the linear song scan.
func (m *StorageMock) SearchSongs(ctx context.Context, query string) ([]models.Song, error) {
	args := m.Called(ctx, query)
	songs, _ := args.Get(0).([]models.Song)
	return songs, args.Error(1)
}

// CreatePlaylist mocks inserting a playlist document.
func (m *StorageMock) CreatePlaylist(ctx context.Context, playlist *models.Playlist) (string, error) {
	args := m.Called(ctx, playlist)
	return args.String(0), args.Error(1)
}

// GetPlaylistByID mocks a single playlist read.
func (m *StorageMock) GetPlaylistByID(ctx context.Context, playlistID string) (*models.Playlist, error) {
	args := m.Called(ctx, playlistID)
	playlist, _ := args.Get(0).(*models.Playlist)
	return playlist, args.Error(1)
}

// UpdatePlaylist mocks replacing a playlist document.
func (m *StorageMock) UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	args := m.Called(ctx, playlist)
	return args.Error(0)
}

// DeletePlaylist mocks removing a playlist document.
func (m *StorageMock) DeletePlaylist(ctx context.Context, playlistID string) error {
	args := m.Called(ctx, playlistID)
	return args.Error(0)
}

// GetUserPlaylists mocks the owner-filtered playlist scan.
func (m *StorageMock) GetUserPlaylists(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	args := m.Called(ctx, ownerID)
	playlists, _ := args.Get(0).([]models.Playlist)
	return playlists, args.Error(1)
}

// GetNumberOfUsers mocks the users collection count.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfSongs mocks the songs collection count.
func (m *StorageMock) GetNumberOfSongs(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfPlaylists mocks the playlists collection count.
func (m *StorageMock) GetNumberOfPlaylists(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
