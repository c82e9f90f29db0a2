// Package storage declares the document-store contract consumed by the
// service layer and the sentinel errors shared by its implementations.
package storage

import (
	"context"
	"errors"

	"github.com/avmusatov/tunebase/internal/models"
)

// ErrNotFound is returned when a requested document does not exist in
// its collection.
var ErrNotFound = errors.New("document not found")

// Storage is the document-store contract: single-document reads and
// writes plus linear collection scans. Implementations own their
// concurrency control; every method is atomic per document.
type Storage interface {
	CreateUser(ctx context.Context, usr *models.User) (string, error)

	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	CreateSong(ctx context.Context, song *models.Song) (string, error)

	GetSongByID(ctx context.Context, songID string) (*models.Song, error)

	// FindMissingSongs reports which of the given song IDs are absent
	// from the songs collection.
	FindMissingSongs(ctx context.Context, songIDs []string) ([]string, error)

	// SearchSongs returns all songs whose title, artist or album
	// contains the query, case-insensitively.
	SearchSongs(ctx context.Context, query string) ([]models.Song, error)

	CreatePlaylist(ctx context.Context, playlist *models.Playlist) (string, error)

	GetPlaylistByID(ctx context.Context, playlistID string) (*models.Playlist, error)

	// UpdatePlaylist replaces the stored playlist document with the
	// given one. Returns ErrNotFound if it does not exist.
	UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error

	DeletePlaylist(ctx context.Context, playlistID string) error

	GetUserPlaylists(ctx context.Context, ownerID string) ([]models.Playlist, error)

	GetNumberOfUsers(ctx context.Context) (int64, error)

	GetNumberOfSongs(ctx context.Context) (int64, error)

	GetNumberOfPlaylists(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error

	Close() error
}
