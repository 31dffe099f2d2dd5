package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/monkeyapp/internal/models"
)

// MockFriendshipRepository is a mock implementation of repository.FriendshipRepository
type MockFriendshipRepository struct {
	mock.Mock
}

func (m *MockFriendshipRepository) Friends(ctx context.Context, id int64) ([]models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockFriendshipRepository) NonFriends(ctx context.Context, id int64) ([]models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockFriendshipRepository) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendshipRepository) Add(ctx context.Context, a, b int64) error {
	args := m.Called(ctx, a, b)
	return args.Error(0)
}

func (m *MockFriendshipRepository) Remove(ctx context.Context, a, b int64) error {
	args := m.Called(ctx, a, b)
	return args.Error(0)
}

func (m *MockFriendshipRepository) SetBestFriend(ctx context.Context, id int64, bestFriendID *int64) error {
	args := m.Called(ctx, id, bestFriendID)
	return args.Error(0)
}
