package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"meetapp/internal/delivery/http/controllers"
	"meetapp/internal/delivery/http/middleware"
	"meetapp/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	verifier domain.TokenVerifier,
	userController *controllers.UserController,
	meetupController *controllers.MeetupController,
	subscriptionController *controllers.SubscriptionController,
	notificationController *controllers.NotificationController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Users and sessions
	mux.HandleFunc("POST /users", userController.Register)
	mux.HandleFunc("POST /sessions", userController.Login)
	mux.HandleFunc("GET /users", auth(userController.GetProfile))
	mux.HandleFunc("PUT /users", auth(userController.UpdateProfile))

	// Meetups
	mux.HandleFunc("POST /meetups", auth(meetupController.CreateMeetup))
	mux.HandleFunc("GET /meetups", auth(meetupController.ListMeetups))
	mux.HandleFunc("GET /meetups/{meetupID}", auth(meetupController.GetMeetupByID))
	mux.HandleFunc("PUT /meetups/{meetupID}", auth(meetupController.UpdateMeetup))
	mux.HandleFunc("DELETE /meetups/{meetupID}", auth(meetupController.DeleteMeetup))
	mux.HandleFunc("GET /organizing", auth(meetupController.ListOrganizing))

	// Subscriptions
	mux.HandleFunc("POST /meetups/{meetupID}/subscriptions", auth(subscriptionController.Subscribe))
	mux.HandleFunc("GET /subscriptions", auth(subscriptionController.ListMySubscriptions))
	mux.HandleFunc("DELETE /subscriptions/{subscriptionID}", auth(subscriptionController.Unsubscribe))

	// Notifications
	mux.HandleFunc("GET /notifications", auth(notificationController.ListMyNotifications))
	mux.HandleFunc("PATCH /notifications/{notificationID}", auth(notificationController.MarkRead))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
