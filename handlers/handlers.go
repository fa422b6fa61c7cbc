package handlers

import (
	"context"

	"cleanco-server/auth"
	"cleanco-server/config"
	"cleanco-server/events"
	"cleanco-server/logger"
	"cleanco-server/metrics"
	"cleanco-server/model"
	"cleanco-server/validation"
)

type ServiceStore interface {
	ListServices(ctx context.Context) ([]model.Service, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *model.Booking) (model.InsertResult, error)
	DeleteBooking(ctx context.Context, id string) (model.DeleteResult, error)
	ListBookings(ctx context.Context, email string) ([]model.Booking, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserData(ctx context.Context, email string) (model.User, error)
}

// Store is satisfied by both database.Store and database.LocalStore.
type Store interface {
	ServiceStore
	BookingStore
	UserStore
	Ping(ctx context.Context) error
}

type Deps struct {
	Config    *config.Config
	Store     Store
	Tokens    *auth.TokenIssuer
	Revoker   auth.Revoker
	Publisher events.Publisher
	Validator *validation.Validator
	Metrics   *metrics.Metrics
	Log       *logger.Logger
}

type Handler struct {
	cfg       *config.Config
	store     Store
	tokens    *auth.TokenIssuer
	revoker   auth.Revoker
	publisher events.Publisher
	validator *validation.Validator
	metrics   *metrics.Metrics
	log       *logger.Logger
}

func New(deps Deps) *Handler {
	h := &Handler{
		cfg:       deps.Config,
		store:     deps.Store,
		tokens:    deps.Tokens,
		revoker:   deps.Revoker,
		publisher: deps.Publisher,
		validator: deps.Validator,
		metrics:   deps.Metrics,
		log:       deps.Log,
	}
	if h.revoker == nil {
		h.revoker = auth.NopRevoker{}
	}
	if h.publisher == nil {
		h.publisher = events.NopPublisher{}
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	if h.log == nil {
		h.log = logger.Discard()
	}
	return h
}
