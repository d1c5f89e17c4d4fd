package srv

import (
	"context"
	"errors"
)

// cleanupService does nothing on Start and runs its funcs on Shutdown,
// last registered first.
type cleanupService struct {
	funcs []func() error
}

func (c *cleanupService) Start(context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(context.Context) error {
	var errs []error
	for i := len(c.funcs) - 1; i >= 0; i-- {
		if c.funcs[i] == nil {
			continue
		}
		if err := c.funcs[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewCleanup(funcs ...func() error) Service {
	return &cleanupService{funcs: funcs}
}
