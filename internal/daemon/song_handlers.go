package daemon

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"karaoke/internal/api"
	"karaoke/internal/queue"
)

func (s *apiServer) queryInt(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		s.badRequest(c, name+" must be a non-negative integer")
		return 0, false
	}
	return value, true
}

func (s *apiServer) songID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.badRequest(c, "invalid song id")
		return 0, false
	}
	return id, true
}

func (s *apiServer) handleSongs(c *gin.Context) {
	limit, ok := s.queryInt(c, "limit")
	if !ok {
		return
	}
	offset, ok := s.queryInt(c, "offset")
	if !ok {
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()
	songs, err := s.catalog.List(ctx, limit, offset)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SongsResponse{Songs: api.FromSongs(songs)})
}

func (s *apiServer) handleSearchSongs(c *gin.Context) {
	var req api.SearchSongsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	query, err := req.ToQuery()
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()
	result, err := s.catalog.Search(ctx, query)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromSearchResult(result))
}

func (s *apiServer) handleCreateSong(c *gin.Context) {
	var req api.CreateSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()
	song, err := s.catalog.Create(ctx, req.ToSong())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.SongResponse{Song: api.FromSong(song)})
}

func (s *apiServer) handleImportSongs(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	ctx, cancel := s.opContext(c)
	defer cancel()
	songs, err := s.catalog.ImportYAML(ctx, body)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{
			Error: fmt.Sprintf("seed file exceeds %d bytes", tooLarge.Limit),
			Code:  queue.CodeValidation,
		})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.SongsResponse{Songs: api.FromSongs(songs)})
}

func (s *apiServer) handleSong(c *gin.Context) {
	id, ok := s.songID(c)
	if !ok {
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()
	song, err := s.catalog.Get(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SongResponse{Song: api.FromSong(song)})
}

func (s *apiServer) handleDeleteSong(c *gin.Context) {
	id, ok := s.songID(c)
	if !ok {
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()
	if err := s.catalog.Delete(ctx, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *apiServer) handleRecordPlay(c *gin.Context) {
	id, ok := s.songID(c)
	if !ok {
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()
	if err := s.catalog.RecordPlay(ctx, id); err != nil {
		s.fail(c, err)
		return
	}
	song, err := s.catalog.Get(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SongResponse{Song: api.FromSong(song)})
}
