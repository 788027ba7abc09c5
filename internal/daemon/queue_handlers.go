package daemon

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"karaoke/internal/api"
	"karaoke/internal/queue"
)

func (s *apiServer) handleQueues(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()
	summaries, err := s.engine.Queues(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.QueuesResponse{Queues: api.FromSummaries(summaries)})
}

func (s *apiServer) handleItems(c *gin.Context) {
	limit := s.defaultLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	ctx, cancel := s.opContext(c)
	defer cancel()
	queueID := c.Param("queueId")
	items, err := s.engine.Items(ctx, queueID, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.QueueItemsResponse{QueueID: queueID, Items: api.FromQueueItems(items)})
}

func (s *apiServer) handleEnqueue(c *gin.Context) {
	var req api.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	placement := queue.PlaceAtEnd
	if strings.TrimSpace(req.Method) != "" {
		parsed, ok := queue.ParsePlacement(req.Method)
		if !ok {
			s.badRequest(c, fmt.Sprintf("unknown enqueue method %q", req.Method))
			return
		}
		placement = parsed
	}
	var after float64
	if placement == queue.PlaceAfterItem {
		if req.AfterPosition == nil {
			s.badRequest(c, "afterPosition is required for afterItem")
			return
		}
		after = *req.AfterPosition
	}

	ctx, cancel := s.opContext(c)
	defer cancel()
	item, err := s.engine.Enqueue(ctx, c.Param("queueId"), placement, req.SongID, after)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.QueueItemResponse{Item: api.FromQueueItem(item)})
}

func (s *apiServer) pathPosition(c *gin.Context) (float64, bool) {
	position, err := api.ParsePosition(c.Param("position"))
	if err != nil {
		s.badRequest(c, fmt.Sprintf("invalid position %q", c.Param("position")))
		return 0, false
	}
	return position, true
}

func (s *apiServer) handleMove(c *gin.Context) {
	position, ok := s.pathPosition(c)
	if !ok {
		return
	}
	var req api.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	method, ok := queue.ParseMoveMethod(req.Method)
	if !ok {
		s.badRequest(c, fmt.Sprintf("unknown move method %q", req.Method))
		return
	}
	var arg float64
	switch method {
	case queue.MoveAfterItem:
		if req.AfterPosition == nil {
			s.badRequest(c, "afterPosition is required for afterItem")
			return
		}
		arg = *req.AfterPosition
	case queue.MoveTo:
		if req.NewPosition == nil {
			s.badRequest(c, "newPosition is required for to")
			return
		}
		arg = *req.NewPosition
	}

	ctx, cancel := s.opContext(c)
	defer cancel()
	item, err := s.engine.Move(ctx, c.Param("queueId"), method, position, arg)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.QueueItemResponse{Item: api.FromQueueItem(item)})
}

func (s *apiServer) handleRemove(c *gin.Context) {
	position, ok := s.pathPosition(c)
	if !ok {
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()
	item, err := s.engine.Remove(ctx, c.Param("queueId"), position)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.QueueItemResponse{Item: api.FromQueueItem(item)})
}

func (s *apiServer) handlePeek(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()
	item, ok, err := s.engine.Peek(ctx, c.Param("queueId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, api.QueueItemResponse{Item: api.FromQueueItem(item)})
}

func (s *apiServer) handleDequeue(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()
	item, ok, err := s.engine.Dequeue(ctx, c.Param("queueId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, api.QueueItemResponse{Item: api.FromQueueItem(item)})
}

func (s *apiServer) handleClear(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()
	removed, err := s.engine.Clear(ctx, c.Param("queueId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ClearResponse{Removed: removed})
}

func (s *apiServer) handleRenumber(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()
	queueID := c.Param("queueId")
	if err := s.engine.Renumber(ctx, queueID); err != nil {
		s.fail(c, err)
		return
	}
	items, err := s.engine.Items(ctx, queueID, 0)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.QueueItemsResponse{QueueID: queueID, Items: api.FromQueueItems(items)})
}

func (s *apiServer) handlePlaying(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()
	playing, ok, err := s.engine.Playing(ctx, c.Param("queueId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, playingResponse(playing, ok))
}

func (s *apiServer) handleSetPlaying(c *gin.Context) {
	var req api.SetPlayingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()
	playing, err := s.engine.SetPlaying(ctx, c.Param("queueId"), req.SongID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, playingResponse(playing, true))
}

func (s *apiServer) handleClearPlaying(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()
	if _, err := s.engine.ClearPlaying(ctx, c.Param("queueId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *apiServer) handlePlayNext(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()
	playing, ok, err := s.engine.PlayNext(ctx, c.Param("queueId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, playingResponse(playing, ok))
}

// handleSkip relays a skip request to the room's players and answers with the
// song that was playing.
func (s *apiServer) handleSkip(c *gin.Context) {
	ctx, cancel := s.opContext(c)
	defer cancel()
	skipped, ok, err := s.engine.Skip(ctx, c.Param("queueId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, playingResponse(skipped, ok))
}

func playingResponse(playing queue.Playing, ok bool) api.PlayingResponse {
	if !ok {
		return api.PlayingResponse{}
	}
	return api.PlayingResponse{Playing: api.FromPlaying(&playing)}
}
