package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/repository"
	"github.com/Domenick1991/cargobooking/internal/validation"
	"github.com/rs/zerolog"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

type WorkspaceUseCase interface {
	Post(ctx context.Context, input PostMessageInput) (*domain.Message, error)
	List(ctx context.Context, limit int) ([]domain.Message, error)
}

type PostMessageInput struct {
	Sender string `json:"sender" validate:"required,max=100"`
	Text   string `json:"text" validate:"required,max=2000"`
}

// Service backs the shared message board carriers and forwarders use to
// coordinate outside the booking flow.
type Service struct {
	messages  repository.MessageRepository
	validator *validation.Validator
	log       zerolog.Logger
}

func NewService(messages repository.MessageRepository, logger zerolog.Logger) *Service {
	return &Service{
		messages:  messages,
		validator: validation.New(),
		log:       logger.With().Str("component", "workspace").Logger(),
	}
}

func (s *Service) Post(ctx context.Context, input PostMessageInput) (*domain.Message, error) {
	input.Sender = strings.TrimSpace(input.Sender)
	input.Text = strings.TrimSpace(input.Text)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	msg := &domain.Message{Sender: input.Sender, Text: input.Text}
	if err := s.messages.Post(ctx, msg); err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}
	s.log.Debug().Int64("message_id", msg.ID).Str("sender", msg.Sender).Msg("message posted")
	return msg, nil
}

// List returns the newest messages, oldest first. A non-positive limit means
// DefaultListLimit; larger limits are clamped to MaxListLimit.
func (s *Service) List(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	messages, err := s.messages.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

var _ WorkspaceUseCase = (*Service)(nil)
