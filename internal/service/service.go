// Package service holds the application's business operations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/internal/repository"
	"github.com/prohmpiriya/explore-events/pkg/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// Config contains settings shared by the services
type Config struct {
	// AppName is the application name reported with hits
	AppName string
	// Now returns the current time; defaults to time.Now
	Now func() time.Time
}

func (c *Config) clock() func() time.Time {
	if c == nil || c.Now == nil {
		return time.Now
	}
	return c.Now
}

func (c *Config) appName() string {
	if c == nil || c.AppName == "" {
		return "ewm-main-service"
	}
	return c.AppName
}

// fail marks the span as failed and returns err unchanged
func fail(span trace.Span, err error) error {
	telemetry.RecordError(span, err)
	return err
}

func requireUser(ctx context.Context, users repository.UserRepository, id int64) (*domain.UserShort, error) {
	return users.GetByID(ctx, id)
}

// resolveCategory looks up a category referenced by an event. A missing
// category is an invalid parameter of the request, not a missing resource.
func resolveCategory(ctx context.Context, categories repository.CategoryRepository, id int64) (*domain.Category, error) {
	c, err := categories.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: category %d", domain.ErrUnknownCategory, id)
		}
		return nil, err
	}
	return c, nil
}
