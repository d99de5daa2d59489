package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"main/internal/apperrors"
	"main/internal/database"
	"main/internal/model"
)

type MockUserStore struct {
	mock.Mock
}

var _ database.UserStore = (*MockUserStore)(nil)

func (m *MockUserStore) ListUsers() ([]model.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) CreateUser(user *model.User) (*model.User, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserStore) FindUserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserStore) FindUserByID(id int64) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func TestResolveOrCreate(t *testing.T) {
	t.Run("missing email is a validation error", func(t *testing.T) {
		r := NewResolver(new(MockUserStore), zap.NewNop())

		_, err := r.ResolveOrCreate("", "Ana")

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("existing user is returned as-is", func(t *testing.T) {
		users := new(MockUserStore)
		existing := &model.User{ID: 3, Name: "Ana", Email: "ana@example.com"}
		users.On("FindUserByEmail", "ana@example.com").Return(existing, nil)

		r := NewResolver(users, zap.NewNop())
		got, err := r.ResolveOrCreate("ana@example.com", "Ana G")

		require.NoError(t, err)
		assert.Equal(t, existing, got)
		users.AssertNotCalled(t, "CreateUser", mock.Anything)
	})

	t.Run("first login creates a user with defaults", func(t *testing.T) {
		users := new(MockUserStore)
		users.On("FindUserByEmail", "ana@example.com").Return(nil, nil)

		var created *model.User
		users.On("CreateUser", mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) { created = args.Get(0).(*model.User) }).
			Return(&model.User{ID: 9, Name: "ana", Email: "ana@example.com", Timezone: "UTC"}, nil)

		r := NewResolver(users, zap.NewNop())
		got, err := r.ResolveOrCreate("ana@example.com", "")

		require.NoError(t, err)
		assert.Equal(t, int64(9), got.ID)
		require.NotNil(t, created)
		// Name defaults to the email's local part, timezone to UTC.
		assert.Equal(t, "ana", created.Name)
		assert.Equal(t, "UTC", created.Timezone)
	})

	t.Run("display name wins when present", func(t *testing.T) {
		users := new(MockUserStore)
		users.On("FindUserByEmail", "ana@example.com").Return(nil, nil)

		var created *model.User
		users.On("CreateUser", mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) { created = args.Get(0).(*model.User) }).
			Return(&model.User{ID: 9}, nil)

		r := NewResolver(users, zap.NewNop())
		_, err := r.ResolveOrCreate("ana@example.com", "Ana García")

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "Ana García", created.Name)
	})
}
