// Package persistence implements the unit of work, the mapper registry
// and the change-tracking proxies that connect domain entities to a
// relational store.
package persistence

// Kind identifies one persisted entity family. The set is closed:
// registry and unit of work only ever see these values.
type Kind uint8

const (
	KindUser Kind = iota + 1
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}
