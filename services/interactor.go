package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abadojack/whatlanggo"
	"github.com/go-playground/validator/v10"

	"github.com/igoryuha/uow/domain"
	"github.com/igoryuha/uow/moderation"
	"github.com/igoryuha/uow/persistence"
	"github.com/igoryuha/uow/repositories"
)

type IInteractor interface {
	Execute(ctx context.Context, cmd domain.EditUserCommand) error
}

// Interactor drives one edit scenario end to end: validate the command,
// screen the incoming bodies, mutate the aggregate through its proxies
// and commit the unit of work.
type Interactor struct {
	repository repositories.IUserRepository
	uow        *persistence.UnitOfWork
	moderator  moderation.Moderator
	validator  *validator.Validate
	log        *slog.Logger
}

func NewInteractor(repository repositories.IUserRepository, uow *persistence.UnitOfWork,
	moderator moderation.Moderator, log *slog.Logger) IInteractor {
	return &Interactor{
		repository: repository,
		uow:        uow,
		moderator:  moderator,
		validator:  validator.New(),
		log:        log,
	}
}

func (s *Interactor) Execute(ctx context.Context, cmd domain.EditUserCommand) error {
	// 1. Reject malformed commands before touching storage.
	if err := s.validator.Struct(cmd); err != nil {
		return fmt.Errorf("validate command: %w", err)
	}

	s.log.Debug(fmt.Sprintf("Executing edit scenario for user %d", cmd.TargetID()))

	// 2. Load the aggregate behind tracking proxies.
	user, err := s.repository.WithID(ctx, cmd.UserID)
	if err != nil {
		return err
	}

	// 3. Route every edit through the owner so the change is tracked.
	for _, edit := range cmd.Edits {
		if err := user.EditMessage(edit.MessageID, s.screen(edit.Body)); err != nil {
			return fmt.Errorf("edit message %d: %w", edit.MessageID, err)
		}
	}

	// 4. An empty name means the caller keeps the current one.
	if cmd.NewName != "" {
		if err := user.Rename(cmd.NewName); err != nil {
			return fmt.Errorf("rename user %d: %w", cmd.UserID, err)
		}
	}

	// 5. One commit persists the whole change set.
	return s.uow.Commit(ctx)
}

// screen censors forbidden words in an incoming body and logs what was
// caught together with the detected language.
func (s *Interactor) screen(body string) string {
	sanitized, found := s.moderator.Censor(body)
	if len(found) > 0 {
		info := whatlanggo.Detect(body)
		s.log.Warn("Censored message body",
			"words", len(found),
			"lang", info.Lang.Iso6391())
	}
	return sanitized
}
