//go:build !linux

package keycmd

import (
	"context"
	"errors"
)

// ReadDevice is only available on Linux.
func ReadDevice(context.Context, string, *Emitter) error {
	return errors.ErrUnsupported
}
