package event

import (
	"time"
)

// DomainEvent is a change notification emitted after a successful commit.
type DomainEvent interface {
	EntityID() int64
}

type UserAdded struct {
	ID   int64
	Name string
	At   time.Time
}

func (e UserAdded) EntityID() int64 {
	return e.ID
}

type UserRenamed struct {
	ID   int64
	Name string
	At   time.Time
}

func (e UserRenamed) EntityID() int64 {
	return e.ID
}

type MessageAdded struct {
	ID      int64
	OwnerID int64
	Body    string
	At      time.Time
}

func (e MessageAdded) EntityID() int64 {
	return e.ID
}

type MessageEdited struct {
	ID      int64
	OwnerID int64
	Body    string
	At      time.Time
}

func (e MessageEdited) EntityID() int64 {
	return e.ID
}
