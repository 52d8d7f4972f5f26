package domain

// User owns an ordered collection of messages. State is reachable only
// through accessors so that loaded aggregates can be wrapped without
// leaking mutable fields.
type User struct {
	id       int64
	name     string
	messages []*Message
}

func NewUser(id int64, name string) *User {
	return &User{
		id:       id,
		name:     name,
		messages: nil,
	}
}

func (u *User) ID() int64 {
	return u.id
}

func (u *User) Name() string {
	return u.name
}

// Messages returns the owned messages in the order they were attached.
func (u *User) Messages() []*Message {
	return u.messages
}

// Own attaches messages to the user, preserving order and claiming
// ownership of each one.
func (u *User) Own(messages ...*Message) {
	for _, m := range messages {
		m.owner = u.id
	}
	u.messages = append(u.messages, messages...)
}

// Rename replaces the user name.
func (u *User) Rename(name string) {
	u.name = name
}

// EditMessage edits the owned message with the given id.
// An id the user does not own is ignored.
func (u *User) EditMessage(id int64, body string) {
	for _, m := range u.messages {
		if m.ID() == id {
			m.Edit(body)
			return
		}
	}
}
