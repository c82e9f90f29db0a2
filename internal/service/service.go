// Package service implements the application's business rules: account
// registration, song and playlist lifecycle, ownership-based
// authorization and reference-integrity checks. All failures are
// classified apperr errors; status codes are decided elsewhere.
package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	"github.com/avmusatov/tunebase/internal/apperr"
	"github.com/avmusatov/tunebase/internal/db/storage"
	"github.com/avmusatov/tunebase/internal/models"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *models.User) (string, error)

	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

type songKeeper interface {
	CreateSong(ctx context.Context, song *models.Song) (string, error)

	GetSongByID(ctx context.Context, songID string) (*models.Song, error)

	FindMissingSongs(ctx context.Context, songIDs []string) ([]string, error)

	SearchSongs(ctx context.Context, query string) ([]models.Song, error)
}

type playlistKeeper interface {
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) (string, error)

	GetPlaylistByID(ctx context.Context, playlistID string) (*models.Playlist, error)

	UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error

	DeletePlaylist(ctx context.Context, playlistID string) error

	GetUserPlaylists(ctx context.Context, ownerID string) ([]models.Playlist, error)
}

type statsKeeper interface {
	GetNumberOfUsers(ctx context.Context) (int64, error)

	GetNumberOfSongs(ctx context.Context) (int64, error)

	GetNumberOfPlaylists(ctx context.Context) (int64, error)
}

type documentStore interface {
	userKeeper
	songKeeper
	playlistKeeper
	statsKeeper
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
}

type tokenBuilder interface {
	BuildToken(userID string) (string, error)
}

// Service wires the document store, password hasher and token issuer
// behind the business operations exposed to HTTP handlers.
type Service struct {
	db     documentStore
	hasher passwordHasher
	tokens tokenBuilder
}

func New(db documentStore, hasher passwordHasher, tokens tokenBuilder) *Service {
	return &Service{
		db:     db,
		hasher: hasher,
		tokens: tokens,
	}
}

// RegisterUser creates an account, storing only the password hash, and
// issues the first access token for it.
func (s *Service) RegisterUser(ctx context.Context, req *models.CreateUserRequest) (*models.CreateUserResponse, error) {
	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	usr := &models.User{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
		ProfileImage: req.ProfileImage,
		Followers:    []string{},
		Following:    []string{},
		CreatedAt:    time.Now().UTC(),
	}

	userID, err := s.db.CreateUser(ctx, usr)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.BuildToken(userID)
	if err != nil {
		return nil, err
	}

	return &models.CreateUserResponse{
		Message:     "User created successfully",
		UserID:      userID,
		AccessToken: accessToken,
	}, nil
}

// GetUser loads a user document by ID.
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	usr, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, err
	}

	return usr, nil
}

// CreateSong validates the song's typed fields and stores it.
func (s *Service) CreateSong(ctx context.Context, req *models.CreateSongRequest) (*models.CreateSongResponse, error) {
	if req.Duration <= 0 {
		return nil, apperr.BadRequest("duration must be a positive number of seconds")
	}

	releaseDate, err := time.Parse(time.RFC3339, req.ReleaseDate)
	if err != nil {
		return nil, apperr.BadRequest("release_date must be a valid RFC 3339 date")
	}

	song := &models.Song{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Artist:      req.Artist,
		Album:       req.Album,
		Duration:    req.Duration,
		Genre:       req.Genre,
		ReleaseDate: releaseDate,
		AudioURL:    req.AudioURL,
		CoverImage:  req.CoverImage,
		CreatedAt:   time.Now().UTC(),
	}

	songID, err := s.db.CreateSong(ctx, song)
	if err != nil {
		return nil, err
	}

	return &models.CreateSongResponse{
		Message: "Song created successfully",
		SongID:  songID,
	}, nil
}

// GetSong loads a song document by ID.
func (s *Service) GetSong(ctx context.Context, songID string) (*models.Song, error) {
	song, err := s.db.GetSongByID(ctx, songID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("song")
		}
		return nil, err
	}

	return song, nil
}

// SearchSongs scans the songs collection for the query and returns the
// requested page. An unmatched query yields an empty slice, not an
// error. Results are sorted by creation time and title so pagination is
// stable across requests.
func (s *Service) SearchSongs(ctx context.Context, query string, page, perPage int) ([]models.Song, error) {
	if len(strings.TrimSpace(query)) < models.SearchMinQueryLength {
		return nil, apperr.Newf(
			apperr.KindBadRequest,
			"query must be at least %d characters long",
			models.SearchMinQueryLength,
		)
	}

	if page < models.SearchDefaultPage {
		page = models.SearchDefaultPage
	}
	if perPage <= 0 {
		perPage = models.SearchDefaultPerPage
	}
	if perPage > models.SearchMaxPerPage {
		perPage = models.SearchMaxPerPage
	}

	songs, err := s.db.SearchSongs(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}

	sort.Slice(songs, func(i, j int) bool {
		if !songs[i].CreatedAt.Equal(songs[j].CreatedAt) {
			return songs[i].CreatedAt.Before(songs[j].CreatedAt)
		}
		return songs[i].Title < songs[j].Title
	})

	from := (page - 1) * perPage
	if from >= len(songs) {
		return []models.Song{}, nil
	}
	to := from + perPage
	if to > len(songs) {
		to = len(songs)
	}

	return songs[from:to], nil
}

// checkSongReferences rejects song IDs absent from the songs collection.
// The check and the subsequent playlist write are not atomic; a song
// deleted in between is accepted as stale (see DESIGN.md).
func (s *Service) checkSongReferences(ctx context.Context, songIDs []string) error {
	if len(songIDs) == 0 {
		return nil
	}

	missing, err := s.db.FindMissingSongs(ctx, funk.UniqString(songIDs))
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperr.Newf(
			apperr.KindBadRequest,
			"unknown songs: %s",
			strings.Join(missing, ", "),
		)
	}

	return nil
}

// CreatePlaylist stores a playlist owned by ownerID. The owner always
// comes from the authenticated identity; any client-supplied owner has
// been discarded at the request-schema boundary already.
func (s *Service) CreatePlaylist(ctx context.Context, ownerID string, req *models.CreatePlaylistRequest) (*models.CreatePlaylistResponse, error) {
	if err := s.checkSongReferences(ctx, req.Songs); err != nil {
		return nil, err
	}

	songs := req.Songs
	if songs == nil {
		songs = []string{}
	}

	now := time.Now().UTC()
	playlist := &models.Playlist{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
		Songs:       songs,
		Followers:   []string{},
		CoverImage:  req.CoverImage,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	playlistID, err := s.db.CreatePlaylist(ctx, playlist)
	if err != nil {
		return nil, err
	}

	return &models.CreatePlaylistResponse{
		Message:    "Playlist created successfully",
		PlaylistID: playlistID,
	}, nil
}

// GetPlaylist loads a playlist document by ID.
func (s *Service) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	playlist, err := s.db.GetPlaylistByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("playlist")
		}
		return nil, err
	}

	return playlist, nil
}

// loadOwnedPlaylist applies the ownership policy for mutations: absent
// playlist means 404, foreign owner means 403.
func (s *Service) loadOwnedPlaylist(ctx context.Context, userID, playlistID string) (*models.Playlist, error) {
	playlist, err := s.db.GetPlaylistByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("playlist")
		}
		return nil, err
	}

	if playlist.OwnerID != userID {
		return nil, apperr.Forbidden("not authorized")
	}

	return playlist, nil
}

// UpdatePlaylist applies a partial patch to a playlist owned by userID.
// OwnerID, CreatedAt and Followers are not patchable.
func (s *Service) UpdatePlaylist(ctx context.Context, userID, playlistID string, req *models.UpdatePlaylistRequest) (*models.UpdatePlaylistResponse, error) {
	playlist, err := s.loadOwnedPlaylist(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}

	if req.Songs != nil {
		if err := s.checkSongReferences(ctx, *req.Songs); err != nil {
			return nil, err
		}
		playlist.Songs = *req.Songs
		if playlist.Songs == nil {
			playlist.Songs = []string{}
		}
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.BadRequest("name must not be empty")
		}
		playlist.Name = *req.Name
	}
	if req.Description != nil {
		playlist.Description = *req.Description
	}
	if req.CoverImage != nil {
		playlist.CoverImage = *req.CoverImage
	}
	playlist.UpdatedAt = time.Now().UTC()

	if err := s.db.UpdatePlaylist(ctx, playlist); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("playlist")
		}
		return nil, err
	}

	return &models.UpdatePlaylistResponse{Message: "Playlist updated successfully"}, nil
}

// DeletePlaylist removes a playlist owned by userID.
func (s *Service) DeletePlaylist(ctx context.Context, userID, playlistID string) error {
	if _, err := s.loadOwnedPlaylist(ctx, userID, playlistID); err != nil {
		return err
	}

	if err := s.db.DeletePlaylist(ctx, playlistID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("playlist")
		}
		return err
	}

	return nil
}

// GetUserPlaylists lists the playlists owned by userID. An unknown user
// simply owns nothing.
func (s *Service) GetUserPlaylists(ctx context.Context, userID string) ([]models.Playlist, error) {
	return s.db.GetUserPlaylists(ctx, userID)
}

// GetStats returns the collection sizes for the internal stats endpoint.
func (s *Service) GetStats(ctx context.Context) (*models.StatsResponse, error) {
	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return nil, err
	}
	songs, err := s.db.GetNumberOfSongs(ctx)
	if err != nil {
		return nil, err
	}
	playlists, err := s.db.GetNumberOfPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	return &models.StatsResponse{
		Users:     users,
		Songs:     songs,
		Playlists: playlists,
	}, nil
}
