package domain

type Command interface {
	TargetID() int64
}

// MessageEdit is one requested body replacement.
type MessageEdit struct {
	MessageID int64  `validate:"required,gt=0"`
	Body      string `validate:"required,max=4096"`
}

// EditUserCommand renames a user and/or edits bodies of messages it owns.
type EditUserCommand struct {
	UserID  int64         `validate:"required,gt=0"`
	NewName string        `validate:"omitempty,min=1,max=64"`
	Edits   []MessageEdit `validate:"dive"`
}

func (c EditUserCommand) TargetID() int64 {
	return c.UserID
}
