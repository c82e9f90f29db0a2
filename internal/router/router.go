// Package router registers the HTTP surface: request decoding and
// schema validation at the boundary, the authentication gate on
// protected routes, and JSON encoding of results. Failures are passed
// to the apperr normalizer, which owns every status code decision.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/avmusatov/tunebase/internal/apperr"
	"github.com/avmusatov/tunebase/internal/auth"
	"github.com/avmusatov/tunebase/internal/gzippedhttp"
	"github.com/avmusatov/tunebase/internal/ipchecker"
	"github.com/avmusatov/tunebase/internal/logger"
	"github.com/avmusatov/tunebase/internal/models"
)

type servicer interface {
	RegisterUser(ctx context.Context, req *models.CreateUserRequest) (*models.CreateUserResponse, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	CreateSong(ctx context.Context, req *models.CreateSongRequest) (*models.CreateSongResponse, error)
	GetSong(ctx context.Context, songID string) (*models.Song, error)
	SearchSongs(ctx context.Context, query string, page, perPage int) ([]models.Song, error)
	CreatePlaylist(ctx context.Context, ownerID string, req *models.CreatePlaylistRequest) (*models.CreatePlaylistResponse, error)
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, userID, playlistID string, req *models.UpdatePlaylistRequest) (*models.UpdatePlaylistResponse, error)
	DeletePlaylist(ctx context.Context, userID, playlistID string) error
	GetUserPlaylists(ctx context.Context, userID string) ([]models.Playlist, error)
	GetStats(ctx context.Context) (*models.StatsResponse, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type authenticator interface {
	Authenticate(h http.Handler) http.Handler
}

// Router holds the dependencies shared by all HTTP handlers.
type Router struct {
	service   servicer
	db        pinger
	ipChecker *ipchecker.IPChecker
}

var validate = validator.New()

func writeJSON(response http.ResponseWriter, statusCode int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("error encoding the response:", err)
	}
}

// decodeAndValidate parses the JSON request body into target and checks
// its required-field schema. Field type and range checks stay with the
// service layer.
func decodeAndValidate(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "request body must be a valid JSON object", err)
	}

	if err := validate.Struct(target); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldError := range validationErrors {
				fields = append(fields, fieldError.Field())
			}
			return apperr.Newf(
				apperr.KindBadRequest,
				"missing or invalid fields: %s",
				strings.Join(fields, ", "),
			)
		}
		return err
	}

	return nil
}

func authenticatedUserID(request *http.Request) (string, error) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		return "", apperr.Unauthenticated("missing or invalid token")
	}

	return userID, nil
}

// PostApiusers handles POST /api/users.
func (theRouter *Router) PostApiusers(response http.ResponseWriter, request *http.Request) {
	var req models.CreateUserRequest
	if err := decodeAndValidate(request, &req); err != nil {
		apperr.WriteError(response, err)
		return
	}

	result, err := theRouter.service.RegisterUser(request.Context(), &req)
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, result)
}

// GetApiuser handles GET /api/users/{id}.
func (theRouter *Router) GetApiuser(response http.ResponseWriter, request *http.Request) {
	usr, err := theRouter.service.GetUser(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

// PostApisongs handles POST /api/songs.
func (theRouter *Router) PostApisongs(response http.ResponseWriter, request *http.Request) {
	if _, err := authenticatedUserID(request); err != nil {
		apperr.WriteError(response, err)
		return
	}

	var req models.CreateSongRequest
	if err := decodeAndValidate(request, &req); err != nil {
		apperr.WriteError(response, err)
		return
	}

	result, err := theRouter.service.CreateSong(request.Context(), &req)
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, result)
}

// GetApisong handles GET /api/songs/{id}.
func (theRouter *Router) GetApisong(response http.ResponseWriter, request *http.Request) {
	song, err := theRouter.service.GetSong(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, song)
}

// GetApisongssearch handles GET /api/songs/search.
func (theRouter *Router) GetApisongssearch(response http.ResponseWriter, request *http.Request) {
	query := request.URL.Query().Get("q")
	page, _ := strconv.Atoi(request.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(request.URL.Query().Get("per_page"))

	songs, err := theRouter.service.SearchSongs(request.Context(), query, page, perPage)
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, songs)
}

// PostApiplaylists handles POST /api/playlists. The playlist owner is
// always the authenticated caller; the request schema carries no owner
// field, so a spoofed one is dropped during decoding.
func (theRouter *Router) PostApiplaylists(response http.ResponseWriter, request *http.Request) {
	userID, err := authenticatedUserID(request)
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	var req models.CreatePlaylistRequest
	if err := decodeAndValidate(request, &req); err != nil {
		apperr.WriteError(response, err)
		return
	}

	result, err := theRouter.service.CreatePlaylist(request.Context(), userID, &req)
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, result)
}

// GetApiplaylist handles GET /api/playlists/{id}.
func (theRouter *Router) GetApiplaylist(response http.ResponseWriter, request *http.Request) {
	playlist, err := theRouter.service.GetPlaylist(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, playlist)
}

// PutApiplaylist handles PUT /api/playlists/{id}.
func (theRouter *Router) PutApiplaylist(response http.ResponseWriter, request *http.Request) {
	userID, err := authenticatedUserID(request)
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	var req models.UpdatePlaylistRequest
	if err := decodeAndValidate(request, &req); err != nil {
		apperr.WriteError(response, err)
		return
	}

	result, err := theRouter.service.UpdatePlaylist(request.Context(), userID, chi.URLParam(request, "id"), &req)
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, result)
}

// DeleteApiplaylist handles DELETE /api/playlists/{id}.
func (theRouter *Router) DeleteApiplaylist(response http.ResponseWriter, request *http.Request) {
	userID, err := authenticatedUserID(request)
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	if err := theRouter.service.DeletePlaylist(request.Context(), userID, chi.URLParam(request, "id")); err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.UpdatePlaylistResponse{Message: "Playlist deleted successfully"})
}

// GetApiuserplaylists handles GET /api/users/{id}/playlists.
func (theRouter *Router) GetApiuserplaylists(response http.ResponseWriter, request *http.Request) {
	playlists, err := theRouter.service.GetUserPlaylists(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, playlists)
}

// GetApihealth handles GET /api/health.
func (theRouter *Router) GetApihealth(response http.ResponseWriter, request *http.Request) {
	if err := theRouter.db.Ping(request.Context()); err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, map[string]string{"status": "ok"})
}

// GetApiinternalstats handles GET /api/internal/stats, reachable only
// from the trusted subnet.
func (theRouter *Router) GetApiinternalstats(response http.ResponseWriter, request *http.Request) {
	if !theRouter.ipChecker.Enabled() {
		apperr.WriteError(response, apperr.Forbidden("not authorized"))
		return
	}

	clientIP, err := theRouter.ipChecker.ClientIP(request)
	if err != nil || !theRouter.ipChecker.Check(clientIP) {
		apperr.WriteError(response, apperr.Forbidden("not authorized"))
		return
	}

	stats, err := theRouter.service.GetStats(request.Context())
	if err != nil {
		apperr.WriteError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

func corsMiddleware(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		response.Header().Set("Access-Control-Allow-Origin", "*")
		response.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		response.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if request.Method == http.MethodOptions {
			response.WriteHeader(http.StatusNoContent)
			return
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}

// New wires the routes. Routes requiring identity pass through the
// authentication gate before the handler runs.
func New(
	svc servicer,
	db pinger,
	theAuth authenticator,
	theIPChecker *ipchecker.IPChecker,
) *chi.Mux {
	theRouter := &Router{
		service:   svc,
		db:        db,
		ipChecker: theIPChecker,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		corsMiddleware,
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	router.Route("/api", func(api chi.Router) {
		api.Post("/users", theRouter.PostApiusers)
		api.Get("/users/{id}", theRouter.GetApiuser)
		api.Get("/users/{id}/playlists", theRouter.GetApiuserplaylists)

		api.Get("/songs/search", theRouter.GetApisongssearch)
		api.Get("/songs/{id}", theRouter.GetApisong)
		api.With(theAuth.Authenticate).Post("/songs", theRouter.PostApisongs)

		api.Get("/playlists/{id}", theRouter.GetApiplaylist)
		api.With(theAuth.Authenticate).Post("/playlists", theRouter.PostApiplaylists)
		api.With(theAuth.Authenticate).Put("/playlists/{id}", theRouter.PutApiplaylist)
		api.With(theAuth.Authenticate).Delete("/playlists/{id}", theRouter.DeleteApiplaylist)

		api.Get("/health", theRouter.GetApihealth)
		api.Get("/internal/stats", theRouter.GetApiinternalstats)
	})

	return router
}
