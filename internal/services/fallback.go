package services

import (
	"context"

	"github.com/desertthunder/moodmusic/internal/models"
)

// DefaultStrategy names the result of [FirstOf] when every strategy missed.
const DefaultStrategy = "default"

// Outcome is the result of one fallback step: either a value was found or there was no result.
type Outcome[T any] struct {
	value T
	found bool
}

// Found wraps a usable value.
func Found[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, found: true}
}

// NoResult signals the step produced nothing and the next one should run.
func NoResult[T any]() Outcome[T] {
	return Outcome[T]{}
}

// Get returns the value and whether one was found.
func (o Outcome[T]) Get() (T, bool) {
	return o.value, o.found
}

// Strategy is one named step of a fallback chain.
type Strategy[T any] struct {
	Name string
	Run  func(ctx context.Context) Outcome[T]
}

// FirstOf runs strategies in order and returns the first found value and the name of the strategy that produced it.
// When all miss it returns fallback and [DefaultStrategy].
func FirstOf[T any](ctx context.Context, fallback T, strategies ...Strategy[T]) (T, string) {
	for _, s := range strategies {
		if v, ok := s.Run(ctx).Get(); ok {
			return v, s.Name
		}
	}
	return fallback, DefaultStrategy
}

// Items turns a possibly empty item list into an [Outcome]; empty lists are no result.
func Items(items []models.CatalogItem) Outcome[[]models.CatalogItem] {
	if len(items) == 0 {
		return NoResult[[]models.CatalogItem]()
	}
	return Found(items)
}
