package cli

import "github.com/matzehuels/orgtower/pkg/errors"

var errRedisURL = errors.New(errors.ErrCodeInvalidInput, "--store redis requires --redis")

func errUnknownStore(name string) error {
	return errors.New(errors.ErrCodeInvalidInput, "unknown session store %q (must be memory, file or redis)", name)
}
