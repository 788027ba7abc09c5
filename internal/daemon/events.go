package daemon

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"karaoke/internal/api"
	"karaoke/internal/logging"
	"karaoke/internal/notifications"
	"karaoke/internal/queue"
)

// handleEvents streams queue events as server-sent events. The stream opens
// with a snapshot of the queue so clients need no separate fetch.
func (s *apiServer) handleEvents(c *gin.Context) {
	if s.hub == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, api.ErrorResponse{Error: "event stream disabled", Code: queue.CodeValidation})
		return
	}
	queueID := c.Param("queueId")
	sub := s.hub.Subscribe(queueID)
	defer sub.Close()

	ctx := c.Request.Context()
	snapshotCtx, cancel := s.opContext(c)
	items, err := s.engine.Items(snapshotCtx, queueID, 0)
	cancel()
	if err != nil {
		s.fail(c, err)
		return
	}

	// The server write timeout would otherwise cut the stream.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	logger := logging.WithContext(ctx, s.logger).With(logging.QueueID(queueID))
	logger.Debug("event stream opened")
	defer logger.Debug("event stream closed")

	snapshot := notifications.QueueChangedEvent(queueID, items, time.Now())
	c.SSEvent(string(snapshot.Type), snapshot)
	c.Writer.Flush()

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type), event)
			return true
		case <-keepAlive.C:
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		}
	})
}
