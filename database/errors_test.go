package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassify(t *testing.T) {
	duplicate := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no documents", err: mongo.ErrNoDocuments, want: ErrNotFound},
		{name: "duplicate key", err: duplicate, want: ErrConflict},
		{name: "deadline", err: fmt.Errorf("find: %w", context.DeadlineExceeded), want: ErrUnavailable},
		{name: "disconnected", err: mongo.ErrClientDisconnected, want: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), "op: ")
		})
	}
}

func TestClassify_Passthrough(t *testing.T) {
	assert.NoError(t, classify("op", nil))

	other := errors.New("boom")
	got := classify("op", other)
	assert.ErrorIs(t, got, other)
	for _, sentinel := range []error{ErrNotFound, ErrConflict, ErrUnavailable, ErrInvalid} {
		assert.NotErrorIs(t, got, sentinel)
	}
}

func TestBookingsFilter(t *testing.T) {
	assert.Equal(t, bson.D{}, bookingsFilter(""))
	assert.Equal(t, bson.D{}, bookingsFilter("   "))
	assert.Equal(t, bson.D{{Key: "email", Value: "a@x.com"}}, bookingsFilter(" A@x.com"))
}
