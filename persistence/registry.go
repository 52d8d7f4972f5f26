package persistence

import (
	"fmt"
	"log/slog"

	"github.com/igoryuha/uow/errors"
)

// Registry binds mappers to entity kinds for commit-time lookup.
type Registry struct {
	mappers map[Kind]Mapper
	log     *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		mappers: make(map[Kind]Mapper),
		log:     log,
	}
}

// Register binds a mapper to a kind. Registering a kind twice replaces
// the previous mapper.
func (r *Registry) Register(kind Kind, mapper Mapper) {
	if _, ok := r.mappers[kind]; ok {
		r.log.Warn("Mapper replaced", "kind", kind.String())
	}
	r.mappers[kind] = mapper
}

// Get returns the mapper bound to the kind, or ErrMapperNotFound.
// There is no silent default.
func (r *Registry) Get(kind Kind) (Mapper, error) {
	mapper, ok := r.mappers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrMapperNotFound, kind)
	}
	return mapper, nil
}
