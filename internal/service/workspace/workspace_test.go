package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Post(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) List(ctx context.Context, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func TestService_PostAndList(t *testing.T) {
	svc := NewService(repository.NewMemoryStore().Messages(), zerolog.Nop())
	ctx := context.Background()

	msg, err := svc.Post(ctx, PostMessageInput{Sender: "  Emirates ops ", Text: " EK215 DXB-LAX has 3t left "})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "Emirates ops", msg.Sender)
	assert.Equal(t, "EK215 DXB-LAX has 3t left", msg.Text)

	_, err = svc.Post(ctx, PostMessageInput{Sender: "KLM", Text: "taking it"})
	require.NoError(t, err)

	list, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Emirates ops", list[0].Sender)
	assert.Equal(t, "KLM", list[1].Sender)
}

func TestService_PostValidation(t *testing.T) {
	svc := NewService(repository.NewMemoryStore().Messages(), zerolog.Nop())

	testCases := []struct {
		name  string
		input PostMessageInput
		field string
	}{
		{name: "missing sender", input: PostMessageInput{Text: "hello"}, field: "sender"},
		{name: "blank sender", input: PostMessageInput{Sender: "   ", Text: "hello"}, field: "sender"},
		{name: "missing text", input: PostMessageInput{Sender: "ops"}, field: "text"},
		{name: "long sender", input: PostMessageInput{Sender: strings.Repeat("s", 101), Text: "hello"}, field: "sender"},
		{name: "long text", input: PostMessageInput{Sender: "ops", Text: strings.Repeat("t", 2001)}, field: "text"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Post(context.Background(), tc.input)
			require.ErrorIs(t, err, domain.ErrValidation)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestService_ListClampsLimit(t *testing.T) {
	repo := new(MockMessageRepository)
	svc := NewService(repo, zerolog.Nop())
	ctx := context.Background()

	repo.On("List", mock.Anything, DefaultListLimit).Return([]domain.Message{}, nil).Once()
	repo.On("List", mock.Anything, MaxListLimit).Return([]domain.Message{}, nil).Once()
	repo.On("List", mock.Anything, 7).Return([]domain.Message{{ID: 1}}, nil).Once()

	_, err := svc.List(ctx, -1)
	require.NoError(t, err)
	_, err = svc.List(ctx, 10000)
	require.NoError(t, err)
	list, err := svc.List(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	repo.AssertExpectations(t)
}

func TestService_PostRepositoryError(t *testing.T) {
	repo := new(MockMessageRepository)
	svc := NewService(repo, zerolog.Nop())
	boom := errors.New("db down")
	repo.On("Post", mock.Anything, mock.Anything).Return(boom).Once()

	_, err := svc.Post(context.Background(), PostMessageInput{Sender: "ops", Text: "hi"})
	assert.ErrorIs(t, err, boom)
}
