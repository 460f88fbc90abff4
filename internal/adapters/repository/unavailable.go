package repository

import (
	"context"
	"fmt"

	"github.com/okian/items/internal/domain/fault"
	"github.com/okian/items/internal/domain/model"
)

// unavailable fails every operation with the error that prevented the
// store from being opened.
type unavailable struct {
	err error
}

// Unavailable returns a Store whose operations all fail with a connection
// fault wrapping cause.
func Unavailable(cause error) Store {
	return unavailable{err: fmt.Errorf("%w: %w", ErrUnavailable, cause)}
}

func (u unavailable) fail(op string) error {
	return fault.New(op, fault.KindConnection, u.err)
}

func (u unavailable) List(context.Context) ([]model.Item, error) {
	return nil, u.fail("repository.unavailable.list")
}

func (u unavailable) Insert(context.Context, model.NewItem) (model.Item, error) {
	return model.Item{}, u.fail("repository.unavailable.insert")
}

func (u unavailable) Delete(_ context.Context, id string) error {
	const op = "repository.unavailable.delete"
	if _, err := parseID(op, id); err != nil {
		return err
	}
	return u.fail(op)
}

func (u unavailable) Ping(context.Context) error {
	return u.fail("repository.unavailable.ping")
}

func (u unavailable) Close(context.Context) error { return nil }
