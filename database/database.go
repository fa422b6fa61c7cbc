package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cleanco-server/config"
	"cleanco-server/logger"
	"cleanco-server/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	ServicesCollection = "services"
	BookingsCollection = "bookings"
	UsersCollection    = "users"
)

// Store is the MongoDB backed implementation of the service, booking and
// user stores. It owns the client and must be closed.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	services *mongo.Collection
	bookings *mongo.Collection
	users    *mongo.Collection
	timeout  time.Duration
	log      *logger.Logger
}

func DBInit(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Store, error) {
	connCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	clientOptions := options.Client().
		ApplyURI(cfg.MongoConnString()).
		SetServerAPIOptions(serverAPI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(connCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to the db: %w", err)
	}

	if err := client.Ping(connCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("db is not available: %w", err)
	}

	store := newStore(client, cfg.MongoDatabase, cfg.StoreTimeout, log)
	if err := store.ensureIndexes(connCtx); err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}

	log.Info("Connected to MongoDB",
		"uri", config.RedactMongoURI(cfg.MongoConnString()),
		"database", cfg.MongoDatabase,
	)
	return store, nil
}

func newStore(client *mongo.Client, dbName string, timeout time.Duration, log *logger.Logger) *Store {
	db := client.Database(dbName)
	return &Store{
		client:   client,
		db:       db,
		services: db.Collection(ServicesCollection),
		bookings: db.Collection(BookingsCollection),
		users:    db.Collection(UsersCollection),
		timeout:  timeout,
		log:      log,
	}
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return classify("ping", s.client.Ping(ctx, readpref.Primary()))
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("email_created_at"),
	})
	if err != nil {
		return fmt.Errorf("mongo ensure bookings indexes: %w", err)
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo ensure users indexes: %w", err)
	}
	return nil
}

// withTimeout bounds a single store call, keeping an earlier deadline
// already present on ctx.
func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < s.timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ListServices returns the service documents as stored. Nested documents
// decode as maps so they render as JSON objects.
func (s *Store) ListServices(ctx context.Context) ([]model.Service, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := s.services.Find(ctx, bson.D{})
	if err != nil {
		return nil, classify("list services", err)
	}
	defer cur.Close(ctx)

	services := []model.Service{}
	if err := cur.All(ctx, &services); err != nil {
		return nil, classify("decode services", err)
	}
	return services, nil
}

func (s *Store) CreateBooking(ctx context.Context, booking *model.Booking) (model.InsertResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if booking.Id.IsZero() {
		booking.Id = primitive.NewObjectID()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	res, err := s.bookings.InsertOne(ctx, booking)
	if err != nil {
		return model.InsertResult{}, classify("create booking", err)
	}

	insertedId := booking.Id.Hex()
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		insertedId = oid.Hex()
	}
	return model.InsertResult{Acknowledged: true, InsertedId: insertedId}, nil
}

func (s *Store) DeleteBooking(ctx context.Context, id string) (model.DeleteResult, error) {
	objId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.DeleteResult{}, fmt.Errorf("delete booking %q: %w", id, ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.bookings.DeleteOne(ctx, bson.D{{Key: "_id", Value: objId}})
	if err != nil {
		return model.DeleteResult{}, classify("delete booking", err)
	}
	return model.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (s *Store) ListBookings(ctx context.Context, email string) ([]model.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.bookings.Find(ctx, bookingsFilter(email), opts)
	if err != nil {
		return nil, classify("list bookings", err)
	}
	defer cur.Close(ctx)

	bookings := []model.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, classify("decode bookings", err)
	}
	return bookings, nil
}

// bookingsFilter matches every booking when email is empty.
func bookingsFilter(email string) bson.D {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return bson.D{}
	}
	return bson.D{{Key: "email", Value: email}}
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if user.Id.IsZero() {
		user.Id = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return classify("create user", err)
	}
	return nil
}

func (s *Store) GetUserData(ctx context.Context, email string) (model.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var user model.User
	filter := bson.D{{Key: "email", Value: strings.ToLower(strings.TrimSpace(email))}}
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return model.User{}, classify("get user", err)
	}
	return user, nil
}
