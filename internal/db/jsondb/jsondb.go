// Package jsondb implements the document store on top of a single JSON
// file. Collections live in memory and are flushed to disk on Close,
// mirroring the way the original deployment treated its document
// database as a plain collection of keyed records.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/avmusatov/tunebase/internal/db/storage"
	"github.com/avmusatov/tunebase/internal/models"
)

// CacheStruct holds the in-memory collections persisted to the JSON file.
type CacheStruct struct {
	Users     map[string]models.User
	Songs     map[string]models.Song
	Playlists map[string]models.Playlist
}

// JSONDB is a file-backed document store. All collection access goes
// through an RWMutex: single-document operations are atomic, there are
// no transactions.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// NewCache returns an empty, fully initialized collection set.
func NewCache() CacheStruct {
	return CacheStruct{
		Users:     map[string]models.User{},
		Songs:     map[string]models.Song{},
		Playlists: map[string]models.Playlist{},
	}
}

func initDBFile(fileName string) error {
	jsonData, err := json.MarshalIndent(NewCache(), "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling initial cache: %w", err)
	}

	return os.WriteFile(fileName, jsonData, 0644)
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

func writeToJSONFile(fileName string, cache *CacheStruct) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(jsonData); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

// New opens the store, creating and initializing the backing file when
// it does not exist yet.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    NewCache(),
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := initDBFile(fileName); err != nil {
			return nil, err
		}
		if err := parseJSONFile(db.fileName, &db.Cache); err != nil {
			return nil, err
		}
	}

	// A hand-edited or older file may miss a collection.
	if db.Cache.Users == nil {
		db.Cache.Users = map[string]models.User{}
	}
	if db.Cache.Songs == nil {
		db.Cache.Songs = map[string]models.Song{}
	}
	if db.Cache.Playlists == nil {
		db.Cache.Playlists = map[string]models.Playlist{}
	}

	return db, nil
}

// NewInMemory returns a store with no backing file. Close must not be
// called on it; wrappers are expected to override it.
func NewInMemory() *JSONDB {
	return &JSONDB{Cache: NewCache()}
}

// Close flushes the collections to the backing file.
func (db *JSONDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return writeToJSONFile(db.fileName, &db.Cache)
}

// Ping reports storage availability.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

func (db *JSONDB) CreateUser(ctx context.Context, usr *models.User) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.Cache.Users[usr.ID] = *usr

	return usr.ID, nil
}

func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, storage.ErrNotFound
	}

	return &usr, nil
}

func (db *JSONDB) CreateSong(ctx context.Context, song *models.Song) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.Cache.Songs[song.ID] = *song

	return song.ID, nil
}

func (db *JSONDB) GetSongByID(ctx context.Context, songID string) (*models.Song, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	song, found := db.Cache.Songs[songID]
	if !found {
		return nil, storage.ErrNotFound
	}

	return &song, nil
}

func (db *JSONDB) FindMissingSongs(ctx context.Context, songIDs []string) ([]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var missing []string
	for _, songID := range songIDs {
		if _, found := db.Cache.Songs[songID]; !found {
			missing = append(missing, songID)
		}
	}

	return missing, nil
}

func (db *JSONDB) SearchSongs(ctx context.Context, query string) ([]models.Song, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	query = strings.ToLower(query)
	result := []models.Song{}
	for _, song := range db.Cache.Songs {
		if strings.Contains(strings.ToLower(song.Title), query) ||
			strings.Contains(strings.ToLower(song.Artist), query) ||
			strings.Contains(strings.ToLower(song.Album), query) {
			result = append(result, song)
		}
	}

	return result, nil
}

func (db *JSONDB) CreatePlaylist(ctx context.Context, playlist *models.Playlist) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.Cache.Playlists[playlist.ID] = *playlist

	return playlist.ID, nil
}

func (db *JSONDB) GetPlaylistByID(ctx context.Context, playlistID string) (*models.Playlist, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	playlist, found := db.Cache.Playlists[playlistID]
	if !found {
		return nil, storage.ErrNotFound
	}

	return &playlist, nil
}

func (db *JSONDB) UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Playlists[playlist.ID]; !found {
		return storage.ErrNotFound
	}

	db.Cache.Playlists[playlist.ID] = *playlist

	return nil
}

func (db *JSONDB) DeletePlaylist(ctx context.Context, playlistID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Playlists[playlistID]; !found {
		return storage.ErrNotFound
	}

	delete(db.Cache.Playlists, playlistID)

	return nil
}

func (db *JSONDB) GetUserPlaylists(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := []models.Playlist{}
	for _, playlist := range db.Cache.Playlists {
		if playlist.OwnerID == ownerID {
			result = append(result, playlist)
		}
	}

	return result, nil
}

func (db *JSONDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Users)), nil
}

func (db *JSONDB) GetNumberOfSongs(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Songs)), nil
}

func (db *JSONDB) GetNumberOfPlaylists(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Playlists)), nil
}
