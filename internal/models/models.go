// Package models defines the domain entities (users, songs, playlists)
// and the typed request/response structures exchanged over the HTTP API.
package models

import "time"

// User represents a registered account. PasswordHash is never serialized
// into API responses.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Followers    []string  `json:"followers"`
	Following    []string  `json:"following"`
	CreatedAt    time.Time `json:"created_at"`
}

// Song represents a single track's metadata.
type Song struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album"`
	Duration    int       `json:"duration"` // seconds
	Genre       string    `json:"genre"`
	ReleaseDate time.Time `json:"release_date"`
	AudioURL    string    `json:"audio_url"`
	CoverImage  string    `json:"cover_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Playlist is an owned resource: only the user whose ID equals OwnerID
// may update or delete it. Songs holds song IDs.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	Songs       []string  `json:"songs"`
	Followers   []string  `json:"followers"`
	CoverImage  string    `json:"cover_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Username     string `json:"username" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	ProfileImage string `json:"profile_image"`
}

type CreateUserResponse struct {
	Message     string `json:"message"`
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

type CreateSongRequest struct {
	Title       string `json:"title" validate:"required"`
	Artist      string `json:"artist" validate:"required"`
	Album       string `json:"album" validate:"required"`
	Duration    int    `json:"duration" validate:"required"`
	Genre       string `json:"genre" validate:"required"`
	ReleaseDate string `json:"release_date" validate:"required"`
	AudioURL    string `json:"audio_url" validate:"required,url"`
	CoverImage  string `json:"cover_image"`
}

type CreateSongResponse struct {
	Message string `json:"message"`
	SongID  string `json:"song_id"`
}

type CreatePlaylistRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Songs       []string `json:"songs"`
	CoverImage  string   `json:"cover_image"`
}

type CreatePlaylistResponse struct {
	Message    string `json:"message"`
	PlaylistID string `json:"playlist_id"`
}

// UpdatePlaylistRequest carries a partial playlist patch. Nil fields are
// left untouched. There is intentionally no owner field: ownership is
// assigned at creation and never changes.
type UpdatePlaylistRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Songs       *[]string `json:"songs"`
	CoverImage  *string   `json:"cover_image"`
}

type UpdatePlaylistResponse struct {
	Message string `json:"message"`
}

// StatsResponse is returned by the internal stats endpoint.
type StatsResponse struct {
	Users     int64 `json:"users"`
	Songs     int64 `json:"songs"`
	Playlists int64 `json:"playlists"`
}

// Search pagination bounds.
const (
	SearchMinQueryLength = 2
	SearchDefaultPage    = 1
	SearchDefaultPerPage = 20
	SearchMaxPerPage     = 100
)
