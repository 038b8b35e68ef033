package storage

import (
	"context"

	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/pkg/errors"
)

var _ KeyValue = (*Scoped)(nil)

// Scoped routes each call to the backend that owns the requested scope.
type Scoped struct {
	backends map[Scope]Backend
}

// NewScoped combines an ephemeral and a persistent backend.
func NewScoped(ephemeral, persistent Backend) (*Scoped, error) {
	if ephemeral == nil {
		return nil, errors.New("[NewScoped] ephemeral backend is required")
	}
	if persistent == nil {
		return nil, errors.New("[NewScoped] persistent backend is required")
	}
	return &Scoped{
		backends: map[Scope]Backend{
			Ephemeral:  ephemeral,
			Persistent: persistent,
		},
	}, nil
}

func (s *Scoped) backend(scope Scope) (Backend, error) {
	b, ok := s.backends[scope]
	if !ok {
		return nil, errors.Wrapf(clienterrors.ErrUnknownScope, "scope %q", scope)
	}
	return b, nil
}

func (s *Scoped) Get(ctx context.Context, key string, scope Scope) (string, error) {
	b, err := s.backend(scope)
	if err != nil {
		return "", err
	}
	return b.Get(ctx, key)
}

func (s *Scoped) Set(ctx context.Context, key, value string, scope Scope) error {
	b, err := s.backend(scope)
	if err != nil {
		return err
	}
	return b.Set(ctx, key, value)
}

func (s *Scoped) Remove(ctx context.Context, key string, scope Scope) error {
	b, err := s.backend(scope)
	if err != nil {
		return err
	}
	return b.Remove(ctx, key)
}
