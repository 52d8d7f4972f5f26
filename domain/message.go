// Package domain contains core concepts of the messaging domain.
// This file defines Message entities and their mutation rules.
// No store, registry, or mapper knowledge should be added here.
package domain

// Message is a user-owned payload with a stable integer identity.
// The owner is assigned when a User takes ownership.
type Message struct {
	id    int64
	body  string
	owner int64
}

func NewMessage(id int64, body string) *Message {
	return &Message{id: id, body: body}
}

func (m *Message) ID() int64 {
	return m.id
}

func (m *Message) Body() string {
	return m.body
}

func (m *Message) OwnerID() int64 {
	return m.owner
}

// Edit replaces the message body.
func (m *Message) Edit(body string) {
	m.body = body
}
