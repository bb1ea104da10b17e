// Package handler exposes the HTTP handlers of the party service.
// This file defines the public catalog endpoints: the categorical
// reference tables the host picks from when creating a party, and the
// full song list. All of these are unauthenticated and sit behind the
// response-cache middleware.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jamsesh/jamsesh/internal/model"
	"github.com/jamsesh/jamsesh/internal/repository"
)

// CatalogHandler serves song and reference data from the catalog store.
type CatalogHandler struct {
	Songs *repository.SongRepo // access to songs and reference tables
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(songs *repository.SongRepo) *CatalogHandler {
	if songs == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Songs: songs}
}

// respondRefs is the shared tail of the four reference endpoints.
func respondRefs(c echo.Context, refs []model.Reference, err error) error {
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if refs == nil {
		refs = []model.Reference{}
	}
	return c.JSON(http.StatusOK, refs)
}

// GetThemes handles GET /api/theme.
func (h *CatalogHandler) GetThemes(c echo.Context) error {
	refs, err := h.Songs.Themes(c.Request().Context())
	return respondRefs(c, refs, err)
}

// GetGenres handles GET /api/genre.
func (h *CatalogHandler) GetGenres(c echo.Context) error {
	refs, err := h.Songs.Genres(c.Request().Context())
	return respondRefs(c, refs, err)
}

// GetTempos handles GET /api/tempo.
func (h *CatalogHandler) GetTempos(c echo.Context) error {
	refs, err := h.Songs.Tempos(c.Request().Context())
	return respondRefs(c, refs, err)
}

// GetMoods handles GET /api/mood.
func (h *CatalogHandler) GetMoods(c echo.Context) error {
	refs, err := h.Songs.Moods(c.Request().Context())
	return respondRefs(c, refs, err)
}

// GetSongs handles GET /api/songs. It returns every catalog song with
// its categorical attributes resolved to display names.
func (h *CatalogHandler) GetSongs(c echo.Context) error {
	songs, err := h.Songs.AllSongs(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if songs == nil {
		songs = []model.Song{}
	}
	return c.JSON(http.StatusOK, songs)
}
