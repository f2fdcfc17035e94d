package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"meetapp/internal/delivery/http/helpers"
	"meetapp/internal/delivery/http/middleware"
	"meetapp/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type MeetupController struct {
	Logger  *slog.Logger
	Service domain.MeetupService
}

func NewMeetupController(logger *slog.Logger, svc domain.MeetupService) *MeetupController {
	return &MeetupController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateMeetupRequest is the request body for POST /meetups.
type CreateMeetupRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
}

// Validate implements helpers.Validator.
func (r CreateMeetupRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		errs = append(errs, "description is required")
	}
	if strings.TrimSpace(r.Location) == "" {
		errs = append(errs, "location is required")
	}
	if r.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	return errs
}

// CreateMeetupSuccessResponse is the success response envelope for POST /meetups (201).
type CreateMeetupSuccessResponse struct {
	Data  *domain.Meetup    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateMeetup godoc
// @Summary Create a new meetup
// @Description Creates a meetup owned by the authenticated user. The date must fall in a future hour.
// @Tags meetups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param meetup body CreateMeetupRequest true "Meetup data"
// @Success 201 {object} controllers.CreateMeetupSuccessResponse "data contains the created meetup"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, validation"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetups [post]
func (c *MeetupController) CreateMeetup(w http.ResponseWriter, r *http.Request) {
	var req CreateMeetupRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	meetup, err := c.Service.CreateMeetup(r.Context(), userID, req.Title, req.Description, req.Location, req.Date)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDate) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeValidation, "meetup date has already passed")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, meetup)
}

// ListMeetupsResponse is the response body for GET /meetups.
type ListMeetupsResponse struct {
	Meetups    []*domain.MeetupWithOrganizer `json:"meetups"`
	Pagination helpers.PaginationMeta        `json:"pagination"`
}

// ListMeetups godoc
// @Summary List upcoming meetups
// @Description Lists meetups with a future date, soonest first. An optional date query parameter (YYYY-MM-DD) restricts results to that day.
// @Tags meetups
// @Produce json
// @Security BearerAuth
// @Param date query string false "Day filter (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} helpers.APIResponse "data contains meetups and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetups [get]
func (c *MeetupController) ListMeetups(w http.ResponseWriter, r *http.Request) {
	_, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var day *time.Time
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = &parsed
	}

	params := helpers.ParsePagination(r)
	meetups, total, err := c.Service.ListUpcomingMeetups(r.Context(), day, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListMeetupsResponse{
		Meetups:    meetups,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetMeetupByID godoc
// @Summary Get a meetup by ID
// @Description Returns the meetup and its organizer.
// @Tags meetups
// @Produce json
// @Security BearerAuth
// @Param meetupID path string true "Meetup ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the meetup and organizer"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetups/{meetupID} [get]
func (c *MeetupController) GetMeetupByID(w http.ResponseWriter, r *http.Request) {
	meetupID := r.PathValue("meetupID")
	if meetupID == "" || !uuidRegex.MatchString(meetupID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid meetupID")
		return
	}
	_, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	meetup, err := c.Service.GetMeetupByID(r.Context(), meetupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "meetup not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, meetup)
}

// UpdateMeetupRequest is the request body for PUT /meetups/{meetupID}. All fields are optional.
type UpdateMeetupRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	Date        *time.Time `json:"date"`
}

// Validate implements helpers.Validator.
func (r UpdateMeetupRequest) Validate() []string {
	var errs []string
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if r.Location != nil && strings.TrimSpace(*r.Location) == "" {
		errs = append(errs, "location cannot be empty")
	}
	return errs
}

// UpdateMeetup godoc
// @Summary Update a meetup
// @Description Applies a partial update. Only the organizer may update, and only before the meetup happens.
// @Tags meetups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param meetupID path string true "Meetup ID (UUID)"
// @Param meetup body UpdateMeetupRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated meetup"
// @Failure 400 {object} helpers.APIResponse "error.code: not_found, past_event, validation"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetups/{meetupID} [put]
func (c *MeetupController) UpdateMeetup(w http.ResponseWriter, r *http.Request) {
	meetupID := r.PathValue("meetupID")
	if meetupID == "" || !uuidRegex.MatchString(meetupID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid meetupID")
		return
	}
	var req UpdateMeetupRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	fields := domain.MeetupUpdate{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date,
	}
	meetup, err := c.Service.UpdateMeetup(r.Context(), meetupID, userID, fields)
	if err != nil {
		c.writeMutationError(w, r, err, "meetup not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, meetup)
}

// DeleteMeetup godoc
// @Summary Delete a meetup
// @Description Deletes the meetup. Only the organizer may delete, and only before the meetup happens.
// @Tags meetups
// @Produce json
// @Security BearerAuth
// @Param meetupID path string true "Meetup ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 400 {object} helpers.APIResponse "error.code: not_found, past_event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetups/{meetupID} [delete]
func (c *MeetupController) DeleteMeetup(w http.ResponseWriter, r *http.Request) {
	meetupID := r.PathValue("meetupID")
	if meetupID == "" || !uuidRegex.MatchString(meetupID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid meetupID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteMeetup(r.Context(), meetupID, userID); err != nil {
		c.writeMutationError(w, r, err, "meetup not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "meetup deleted"})
}

// ListOrganizing godoc
// @Summary List meetups organized by the current user
// @Tags meetups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the user's meetups"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizing [get]
func (c *MeetupController) ListOrganizing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	meetups, err := c.Service.ListMeetupsByOrganizer(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, meetups)
}

// writeMutationError maps meetup mutation errors to responses shared by update and delete.
func (c *MeetupController) writeMutationError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "meetup does not belong to you")
	case errors.Is(err, domain.ErrPastMeetup):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodePastEvent, "meetup has already happened")
	case errors.Is(err, domain.ErrInvalidDate):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeValidation, "meetup date has already passed")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
