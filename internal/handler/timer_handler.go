package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "studyhub/internal/errors"
	"studyhub/internal/service"
	"studyhub/internal/timer"
)

const defaultHeartbeat = 25 * time.Second

type TimerHandler struct {
	timerService *service.TimerService
	heartbeat    time.Duration
}

type switchModeRequest struct {
	Mode string `json:"mode"`
}

// settingsRequest uses pointers so omitted fields are rejected rather than
// silently zeroed.
type settingsRequest struct {
	FocusSeconds      *int  `json:"focusSeconds"`
	ShortBreakSeconds *int  `json:"shortBreakSeconds"`
	LongBreakSeconds  *int  `json:"longBreakSeconds"`
	LongBreakInterval *int  `json:"longBreakInterval"`
	AutoStartBreaks   *bool `json:"autoStartBreaks"`
	AutoStartFocus    *bool `json:"autoStartFocus"`
}

func (r settingsRequest) toSettings() (timer.Settings, bool) {
	if r.FocusSeconds == nil || r.ShortBreakSeconds == nil || r.LongBreakSeconds == nil || r.LongBreakInterval == nil {
		return timer.Settings{}, false
	}
	settings := timer.Settings{
		FocusSeconds:      *r.FocusSeconds,
		ShortBreakSeconds: *r.ShortBreakSeconds,
		LongBreakSeconds:  *r.LongBreakSeconds,
		LongBreakInterval: *r.LongBreakInterval,
	}
	if r.AutoStartBreaks != nil {
		settings.AutoStartBreaks = *r.AutoStartBreaks
	}
	if r.AutoStartFocus != nil {
		settings.AutoStartFocus = *r.AutoStartFocus
	}
	return settings, true
}

func NewTimerHandler(timerService *service.TimerService, heartbeat time.Duration) *TimerHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &TimerHandler{timerService: timerService, heartbeat: heartbeat}
}

func (h *TimerHandler) GetState(c *gin.Context) {
	h.respond(c, h.timerService.GetState)
}

func (h *TimerHandler) Start(c *gin.Context) {
	h.respond(c, h.timerService.Start)
}

func (h *TimerHandler) Pause(c *gin.Context) {
	h.respond(c, h.timerService.Pause)
}

func (h *TimerHandler) Reset(c *gin.Context) {
	h.respond(c, h.timerService.Reset)
}

func (h *TimerHandler) SwitchMode(c *gin.Context) {
	var req switchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}
	h.respond(c, func(ctx context.Context, userID string) (*service.StateView, *apperrors.APIError) {
		return h.timerService.SwitchMode(ctx, userID, req.Mode)
	})
}

func (h *TimerHandler) GetSettings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	settings, apiErr := h.timerService.GetSettings(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *TimerHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}
	settings, complete := req.toSettings()
	if !complete {
		writeError(c, apperrors.BadRequest("invalid_settings", "all durations and longBreakInterval are required"))
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}
	state, apiErr := h.timerService.UpdateSettings(c.Request.Context(), userID, settings)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "settings": settings})
}

// Events streams the user's timer notifications as server-sent events. The
// first event carries the current state.
func (h *TimerHandler) Events(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	events, cancel := h.timerService.Subscribe(userID)
	defer cancel()

	state, apiErr := h.timerService.GetState(ctx, userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("state", state)
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			c.SSEvent(string(event.Kind), event)
		case at := <-heartbeat.C:
			c.SSEvent("ping", at.UTC().Format(time.RFC3339))
		}
		c.Writer.Flush()
	}
}

func (h *TimerHandler) respond(
	c *gin.Context,
	fn func(context.Context, string) (*service.StateView, *apperrors.APIError),
) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	state, apiErr := fn(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}
