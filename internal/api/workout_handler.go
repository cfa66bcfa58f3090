package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/service"
	"vyam/fitness-app/internal/session"
)

// WorkoutHandler serves the read-only workout catalog.
type WorkoutHandler struct {
	catalogService service.CatalogService
}

func NewWorkoutHandler(catalogService service.CatalogService) *WorkoutHandler {
	return &WorkoutHandler{catalogService: catalogService}
}

type ExerciseResponse struct {
	Name            string              `json:"name"`
	Type            domain.ExerciseType `json:"type"`
	DurationSeconds *int                `json:"durationSec,omitempty"`
	DurationLabel   string              `json:"durationLabel,omitempty"` // e.g. "1:30 min"
	Reps            string              `json:"reps,omitempty"`
}

type WorkoutResponse struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Level           domain.Level       `json:"level"`
	DurationMinutes int                `json:"durationMin"`
	DurationLabel   string             `json:"durationLabel"`
	METValue        float64            `json:"metValue"`
	ImagePath       string             `json:"imagePath,omitempty"`
	Description     string             `json:"description,omitempty"`
	Featured        bool               `json:"featured"`
	Exercises       []ExerciseResponse `json:"exercises"`
}

func MapExerciseToResponse(e *domain.Exercise) ExerciseResponse {
	resp := ExerciseResponse{
		Name:            e.Name,
		Type:            e.Type,
		DurationSeconds: e.DurationSeconds,
		Reps:            e.Reps,
	}
	if e.DurationSeconds != nil {
		resp.DurationLabel = session.FormatExerciseDuration(*e.DurationSeconds)
	}
	return resp
}

func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	exercises := make([]ExerciseResponse, len(w.Exercises))
	for i := range w.Exercises {
		exercises[i] = MapExerciseToResponse(&w.Exercises[i])
	}
	return WorkoutResponse{
		ID:              w.ID,
		Title:           w.Title,
		Level:           w.Level,
		DurationMinutes: w.DurationMinutes,
		DurationLabel:   session.FormatDuration(w.DurationMinutes),
		METValue:        w.METValue,
		ImagePath:       w.ImagePath,
		Description:     w.Description,
		Featured:        w.Featured,
		Exercises:       exercises,
	}
}

func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}

func respondCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrNoImage):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCatalogUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// ListWorkouts godoc
// @Summary List catalog workouts
// @Tags Workouts
// @Produce json
// @Param level query string false "Easy, Medium or Heavy"
// @Param q query string false "Search title, description and exercise names"
// @Param featured query bool false "Only featured workouts"
// @Success 200 {array} WorkoutResponse
// @Failure 503 {object} gin.H "Catalog unavailable"
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	filter := service.WorkoutFilter{
		Level:    domain.Level(c.Query("level")),
		Query:    c.Query("q"),
		Featured: c.Query("featured") == "true",
	}
	if filter.Level != "" && !filter.Level.Valid() {
		abortWithError(c, http.StatusBadRequest, "level must be one of Easy, Medium, Heavy")
		return
	}

	workouts, err := h.catalogService.List(c.Request.Context(), filter)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// GetWorkout godoc
// @Summary Get one workout
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} gin.H "Unknown workout"
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	workout, err := h.catalogService.GetWorkout(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// GetImageURL godoc
// @Summary Temporary download link for the workout image
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} gin.H "{\"url\": \"...\"}"
// @Router /workouts/{id}/image-url [get]
func (h *WorkoutHandler) GetImageURL(c *gin.Context) {
	url, err := h.catalogService.GetImageURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// RefreshCatalog godoc
// @Summary Drop the cached catalog and fetch it again
// @Tags Workouts
// @Produce json
// @Success 200 {object} gin.H "{\"version\": 3, \"workouts\": 12}"
// @Router /workouts/refresh [post]
func (h *WorkoutHandler) RefreshCatalog(c *gin.Context) {
	lib, err := h.catalogService.Refresh(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": lib.Version, "workouts": len(lib.Workouts)})
}
