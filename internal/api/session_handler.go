package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/service"
	"vyam/fitness-app/internal/session"
)

// SessionHandler exposes the caller's running workout session.
type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

type StartSessionRequest struct {
	WorkoutID string `json:"workoutId" binding:"required"`
}

// SessionResponse is a rendering-ready view of a session.
type SessionResponse struct {
	SessionID     string            `json:"sessionId"`
	WorkoutID     string            `json:"workoutId"`
	WorkoutTitle  string            `json:"workoutTitle"`
	State         session.State     `json:"state"`
	Elapsed       string            `json:"elapsed"`       // mm:ss
	RestRemaining string            `json:"restRemaining"` // mm:ss
	Current       ExerciseResponse  `json:"current"`
	Next          *ExerciseResponse `json:"next,omitempty"`
	Position      int               `json:"position"`
	Total         int               `json:"total"`
	Summary       *session.Summary  `json:"summary,omitempty"`
}

func MapSessionToResponse(v session.View) SessionResponse {
	resp := SessionResponse{
		SessionID:     v.SessionID,
		WorkoutID:     v.WorkoutID,
		WorkoutTitle:  v.WorkoutTitle,
		State:         v.State,
		Elapsed:       session.FormatTime(v.State.ElapsedSeconds),
		RestRemaining: session.FormatTime(v.State.RestRemainingSeconds),
		Current:       MapExerciseToResponse(&v.Current),
		Position:      v.Position,
		Total:         v.Total,
		Summary:       v.Summary,
	}
	if v.Next != nil {
		next := MapExerciseToResponse(v.Next)
		resp.Next = &next
	}
	return resp
}

func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNoActiveSession), errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrSessionInProgress):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidWorkout):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrCatalogUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// StartSession godoc
// @Summary Start a workout session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param body body StartSessionRequest true "Workout to run"
// @Success 201 {object} SessionResponse
// @Failure 404 {object} gin.H "Unknown workout"
// @Failure 409 {object} gin.H "Another session is in progress"
// @Failure 422 {object} gin.H "Workout cannot be run"
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	v, err := h.sessionService.Start(c.Request.Context(), userID, req.WorkoutID)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSessionToResponse(v))
}

// GetCurrent godoc
// @Summary The caller's latest session, possibly finished
// @Tags Sessions
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 404 {object} gin.H "No session"
// @Router /sessions/current [get]
func (h *SessionHandler) GetCurrent(c *gin.Context) { h.act(c, h.sessionService.Current) }

// Pause godoc
// @Summary Pause the running session
// @Tags Sessions
// @Success 200 {object} SessionResponse
// @Router /sessions/current/pause [post]
func (h *SessionHandler) Pause(c *gin.Context) { h.act(c, h.sessionService.Pause) }

// Resume godoc
// @Summary Resume a paused session
// @Tags Sessions
// @Success 200 {object} SessionResponse
// @Router /sessions/current/resume [post]
func (h *SessionHandler) Resume(c *gin.Context) { h.act(c, h.sessionService.Resume) }

// Next godoc
// @Summary Finish the current exercise
// @Description Starts the rest period, or completes the session on the last exercise.
// @Tags Sessions
// @Success 200 {object} SessionResponse
// @Router /sessions/current/next [post]
func (h *SessionHandler) Next(c *gin.Context) { h.act(c, h.sessionService.Next) }

// Previous godoc
// @Summary Go back one exercise
// @Tags Sessions
// @Success 200 {object} SessionResponse
// @Router /sessions/current/previous [post]
func (h *SessionHandler) Previous(c *gin.Context) { h.act(c, h.sessionService.Previous) }

// Quit godoc
// @Summary Abandon the session without logging it
// @Tags Sessions
// @Success 200 {object} SessionResponse
// @Router /sessions/current/quit [post]
func (h *SessionHandler) Quit(c *gin.Context) { h.act(c, h.sessionService.Quit) }

func (h *SessionHandler) act(c *gin.Context, action func(userID string) (session.View, error)) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	v, err := action(userID)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionToResponse(v))
}

// sseKeepAlive is how often a comment line is sent on an idle stream.
const sseKeepAlive = 15 * time.Second

// Events godoc
// @Summary Server-sent events of session snapshots
// @Description Emits a "state" event per change and closes after the session ends.
// @Tags Sessions
// @Produce text/event-stream
// @Router /sessions/current/events [get]
func (h *SessionHandler) Events(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	updates, cancel, err := h.sessionService.Subscribe(userID)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	defer cancel()

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-keepAlive.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			return true
		case st, open := <-updates:
			if !open {
				return false
			}
			c.SSEvent("state", st)
			return !st.Phase.Terminal()
		}
	})
}
