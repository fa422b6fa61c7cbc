package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cleanco-server/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type localDB struct {
	Services []model.Service `json:"services"`
	Bookings []model.Booking `json:"bookings"`
	Users    []model.User    `json:"users"`
}

// LocalStore keeps every collection in a single JSON file. Each write is
// committed to disk before it returns.
type LocalStore struct {
	mu   sync.Mutex
	path string
	data localDB
}

func OpenLocal(path string) (*LocalStore, error) {
	s := &LocalStore{path: path}
	data, err := s.readLocalDB()
	if err != nil {
		return nil, err
	}
	s.data = data
	return s, nil
}

func (s *LocalStore) readLocalDB() (localDB, error) {
	data := localDB{}

	fileBytes, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		empty := localDB{Services: []model.Service{}, Bookings: []model.Booking{}, Users: []model.User{}}
		if err := s.commit(empty); err != nil {
			return localDB{}, err
		}
		return empty, nil
	} else if err != nil {
		return localDB{}, fmt.Errorf("read local db: %w", err)
	}

	if err := json.Unmarshal(fileBytes, &data); err != nil {
		return localDB{}, fmt.Errorf("decode local db %s: %w", s.path, err)
	}
	return data, nil
}

func (s *LocalStore) commit(data localDB) error {
	dataBytes, err := json.MarshalIndent(data, "", "	")
	if err != nil {
		return fmt.Errorf("encode local db: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create local db dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, dataBytes, 0o644); err != nil {
		return fmt.Errorf("write local db: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write local db: %w", err)
	}
	return nil
}

func (s *LocalStore) Ping(context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("local db: %w: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *LocalStore) Close(context.Context) error {
	return nil
}

// SeedServices replaces the services collection. The server never writes
// services itself; this exists for fixtures and local setup.
func (s *LocalStore) SeedServices(services []model.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data
	next.Services = make([]model.Service, len(services))
	for i, svc := range services {
		doc := make(model.Service, len(svc)+1)
		for k, v := range svc {
			doc[k] = v
		}
		if _, ok := doc["_id"]; !ok {
			doc["_id"] = primitive.NewObjectID().Hex()
		}
		next.Services[i] = doc
	}
	if err := s.commit(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *LocalStore) ListServices(context.Context) ([]model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]model.Service{}, s.data.Services...), nil
}

func (s *LocalStore) CreateBooking(_ context.Context, booking *model.Booking) (model.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.Id.IsZero() {
		booking.Id = primitive.NewObjectID()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	for _, b := range s.data.Bookings {
		if b.Id == booking.Id {
			return model.InsertResult{}, fmt.Errorf("create booking: %w", ErrConflict)
		}
	}

	next := s.data
	next.Bookings = append(append([]model.Booking{}, s.data.Bookings...), *booking)
	if err := s.commit(next); err != nil {
		return model.InsertResult{}, fmt.Errorf("create booking: %w: %w", ErrUnavailable, err)
	}
	s.data = next

	return model.InsertResult{Acknowledged: true, InsertedId: booking.Id.Hex()}, nil
}

func (s *LocalStore) DeleteBooking(_ context.Context, id string) (model.DeleteResult, error) {
	objId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.DeleteResult{}, fmt.Errorf("delete booking %q: %w", id, ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.data.Bookings {
		if b.Id != objId {
			continue
		}
		next := s.data
		next.Bookings = append(append([]model.Booking{}, s.data.Bookings[:i]...), s.data.Bookings[i+1:]...)
		if err := s.commit(next); err != nil {
			return model.DeleteResult{}, fmt.Errorf("delete booking: %w: %w", ErrUnavailable, err)
		}
		s.data = next
		return model.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
	}

	return model.DeleteResult{Acknowledged: true, DeletedCount: 0}, nil
}

func (s *LocalStore) ListBookings(_ context.Context, email string) ([]model.Booking, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	bookings := []model.Booking{}
	for _, b := range s.data.Bookings {
		if email == "" || b.Email == email {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func (s *LocalStore) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range s.data.Users {
		if u.Email == user.Email {
			return fmt.Errorf("create user: %w", ErrConflict)
		}
	}
	if user.Id.IsZero() {
		user.Id = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	next := s.data
	next.Users = append(append([]model.User{}, s.data.Users...), *user)
	if err := s.commit(next); err != nil {
		return fmt.Errorf("create user: %w: %w", ErrUnavailable, err)
	}
	s.data = next
	return nil
}

func (s *LocalStore) GetUserData(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.data.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("get user: %w", ErrNotFound)
}
