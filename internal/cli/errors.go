package cli

import (
	"errors"
	"fmt"

	"stock-cli/internal/api"
	"stock-cli/internal/model"
)

type notFoundError struct {
	kind string
	id   int64
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.kind, e.id)
}

func errNotFound(kind model.Kind, id int64) error {
	return notFoundError{kind: string(kind), id: id}
}

var errNotConfirmed = errors.New("refusing to delete without --yes")

// requestError turns an API failure into the same text the console shows.
// Validation errors pass through unchanged.
func requestError(action string, err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	if errors.Is(err, api.ErrNoCredentials) {
		return errors.New("not logged in; run `stock login`")
	}
	return fmt.Errorf("%s: %s", action, api.Describe(err))
}
