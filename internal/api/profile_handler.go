package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/service"
	"vyam/fitness-app/internal/session"
)

// ProfileHandler serves the profile, favorites and history endpoints.
type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type CreateProfileRequest struct {
	Name     string  `json:"name" binding:"required"`
	Gender   string  `json:"gender" binding:"required"`
	Age      int     `json:"age" binding:"required"`
	WeightKg float64 `json:"weight" binding:"required"`
	HeightCm float64 `json:"height" binding:"required"`
	Goal     string  `json:"goal" binding:"required"`
	Level    string  `json:"level" binding:"required"`
}

type UpdateProfileRequest struct {
	Name     *string  `json:"name"`
	Gender   *string  `json:"gender"`
	Age      *int     `json:"age"`
	WeightKg *float64 `json:"weight"`
	HeightCm *float64 `json:"height"`
	Goal     *string  `json:"goal"`
	Level    *string  `json:"level"`
}

type FavoriteResponse struct {
	WorkoutID string `json:"workoutId"`
	Favorite  bool   `json:"favorite"`
}

type WorkoutLogResponse struct {
	ID                 string `json:"id"`
	WorkoutID          string `json:"workoutId"`
	WorkoutTitle       string `json:"workoutTitle"`
	Date               string `json:"date"`
	DurationMinutes    int    `json:"durationMin"`
	Duration           string `json:"duration"` // e.g. "1h 5min"
	CaloriesBurned     int    `json:"caloriesBurned"`
	CompletedExercises int    `json:"completedExercises"`
	TotalExercises     int    `json:"totalExercises"`
}

func MapWorkoutLogToResponse(l *domain.WorkoutLog) WorkoutLogResponse {
	return WorkoutLogResponse{
		ID:                 l.ID.Hex(),
		WorkoutID:          l.WorkoutID,
		WorkoutTitle:       l.WorkoutTitle,
		Date:               l.Date.UTC().Format("2006-01-02T15:04:05Z"),
		DurationMinutes:    l.DurationMinutes,
		Duration:           session.FormatDuration(l.DurationMinutes),
		CaloriesBurned:     l.CaloriesBurned,
		CompletedExercises: l.CompletedExercises,
		TotalExercises:     l.TotalExercises,
	}
}

// respondProfileError maps profile service errors onto HTTP statuses.
func respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfileValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProfileExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrCatalogUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// CreateProfile godoc
// @Summary Complete profile setup
// @Tags Profile
// @Accept json
// @Produce json
// @Param profile body CreateProfileRequest true "Profile"
// @Success 201 {object} domain.Profile
// @Failure 400 {object} gin.H "Out-of-range value"
// @Failure 409 {object} gin.H "Profile already exists"
// @Router /profile [post]
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile, err := h.profileService.CreateProfile(c.Request.Context(), userID, domain.Profile{
		Name:     req.Name,
		Gender:   req.Gender,
		Age:      req.Age,
		WeightKg: req.WeightKg,
		HeightCm: req.HeightCm,
		Goal:     req.Goal,
		Level:    req.Level,
	})
	if err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Tags Profile
// @Produce json
// @Success 200 {object} domain.Profile
// @Failure 404 {object} gin.H "Profile not set up yet"
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary Partially update the caller's profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} domain.Profile
// @Router /profile [patch]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdate{
		Name:     req.Name,
		Gender:   req.Gender,
		Age:      req.Age,
		WeightKg: req.WeightKg,
		HeightCm: req.HeightCm,
		Goal:     req.Goal,
		Level:    req.Level,
	})
	if err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListFavorites godoc
// @Summary Favorite workouts
// @Tags Favorites
// @Produce json
// @Success 200 {array} WorkoutResponse
// @Router /favorites [get]
func (h *ProfileHandler) ListFavorites(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	workouts, err := h.profileService.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// AddFavorite godoc
// @Summary Mark a workout as favorite
// @Tags Favorites
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} FavoriteResponse
// @Router /favorites/{workoutId} [put]
func (h *ProfileHandler) AddFavorite(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	workoutID := c.Param("workoutId")
	if err := h.profileService.AddFavorite(c.Request.Context(), userID, workoutID); err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, FavoriteResponse{WorkoutID: workoutID, Favorite: true})
}

// RemoveFavorite godoc
// @Summary Unmark a favorite workout
// @Tags Favorites
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} FavoriteResponse
// @Router /favorites/{workoutId} [delete]
func (h *ProfileHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	workoutID := c.Param("workoutId")
	if err := h.profileService.RemoveFavorite(c.Request.Context(), userID, workoutID); err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, FavoriteResponse{WorkoutID: workoutID, Favorite: false})
}

// ToggleFavorite godoc
// @Summary Flip the favorite flag of a workout
// @Tags Favorites
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} FavoriteResponse
// @Router /favorites/{workoutId}/toggle [post]
func (h *ProfileHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	workoutID := c.Param("workoutId")
	on, err := h.profileService.ToggleFavorite(c.Request.Context(), userID, workoutID)
	if err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, FavoriteResponse{WorkoutID: workoutID, Favorite: on})
}

// GetHistory godoc
// @Summary Completed workouts, newest first
// @Tags History
// @Produce json
// @Param limit query int false "Maximum entries (default 50)"
// @Success 200 {array} WorkoutLogResponse
// @Router /history [get]
func (h *ProfileHandler) GetHistory(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	logs, err := h.profileService.GetHistory(c.Request.Context(), userID, limit)
	if err != nil {
		respondProfileError(c, err)
		return
	}
	resp := make([]WorkoutLogResponse, len(logs))
	for i := range logs {
		resp[i] = MapWorkoutLogToResponse(&logs[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetHistoryStats godoc
// @Summary Totals over the caller's history
// @Tags History
// @Produce json
// @Success 200 {object} domain.HistoryStats
// @Router /history/stats [get]
func (h *ProfileHandler) GetHistoryStats(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	stats, err := h.profileService.GetHistoryStats(c.Request.Context(), userID)
	if err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
