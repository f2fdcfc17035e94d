package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"meetapp/internal/delivery/http/helpers"
	"meetapp/internal/delivery/http/middleware"
	"meetapp/internal/domain"
)

type SubscriptionController struct {
	Logger  *slog.Logger
	Service domain.SubscriptionService
}

func NewSubscriptionController(logger *slog.Logger, svc domain.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{
		Logger:  logger,
		Service: svc,
	}
}

// SubscribeSuccessResponse is the success response envelope for POST /meetups/{meetupID}/subscriptions (201).
type SubscribeSuccessResponse struct {
	Data  *domain.Subscription `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// Subscribe godoc
// @Summary Subscribe the current user to a meetup
// @Description Runs the admission checks in order and creates the subscription. Every business-rule failure returns 400 with a stable error code: not_found, self_subscription, past_event, duplicate_subscription, or time_conflict.
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param meetupID path string true "Meetup ID (UUID)"
// @Success 201 {object} controllers.SubscribeSuccessResponse "data contains the created subscription"
// @Failure 400 {object} helpers.APIResponse "error.code: not_found, self_subscription, past_event, duplicate_subscription, time_conflict"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetups/{meetupID}/subscriptions [post]
func (c *SubscriptionController) Subscribe(w http.ResponseWriter, r *http.Request) {
	meetupID := r.PathValue("meetupID")
	if meetupID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing meetupID")
		return
	}
	if !uuidRegex.MatchString(meetupID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid meetupID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	sub, err := c.Service.Subscribe(r.Context(), userID, meetupID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeNotFound, "meetup not found")
		case errors.Is(err, domain.ErrSelfSubscription):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeSelfSubscription, "cannot subscribe to a meetup you organize")
		case errors.Is(err, domain.ErrPastMeetup):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodePastEvent, "meetup has already happened")
		case errors.Is(err, domain.ErrDuplicateSubscription):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeDuplicateSubscription, "already subscribed to this meetup")
		case errors.Is(err, domain.ErrTimeConflict):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeTimeConflict, "already subscribed to another meetup at this time")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, sub)
}

// ListSubscriptionsSuccessResponse is the success response envelope for GET /subscriptions (200).
type ListSubscriptionsSuccessResponse struct {
	Data  []*domain.SubscriptionWithMeetup `json:"data"`
	Error *helpers.APIError                `json:"error"`
}

// ListMySubscriptions godoc
// @Summary List the current user's upcoming subscriptions
// @Description Returns subscriptions whose meetup date is still in the future, closest first. Past attendance is not surfaced here.
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListSubscriptionsSuccessResponse "data contains subscriptions with their meetups"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /subscriptions [get]
func (c *SubscriptionController) ListMySubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	subs, err := c.Service.ListForUser(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, subs)
}

// Unsubscribe godoc
// @Summary Cancel a subscription
// @Description Deletes the subscription if it belongs to the current user. Works for past meetups too: cancellation has no temporal guard.
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param subscriptionID path string true "Subscription ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 400 {object} helpers.APIResponse "error.code: not_found"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /subscriptions/{subscriptionID} [delete]
func (c *SubscriptionController) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	subscriptionID := r.PathValue("subscriptionID")
	if subscriptionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing subscriptionID")
		return
	}
	if !uuidRegex.MatchString(subscriptionID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid subscriptionID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Unsubscribe(r.Context(), subscriptionID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeNotFound, "subscription not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "subscription does not belong to you")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "subscription cancelled"})
}
