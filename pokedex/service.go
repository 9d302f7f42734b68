package pokedex

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// TextCodeInvalidArgument marks use case input rejected before the repository is called.
const TextCodeInvalidArgument = "INVALID_ARGUMENT"

// Service exposes the catalog use cases on top of a Repository.
type Service struct {
	repo Repository
}

// NewService returns a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetPokemonList returns one page of the catalog.
func (s *Service) GetPokemonList(ctx context.Context, limit, offset int) ([]Pokemon, error) {
	err := validation.Errors{
		"limit":  validation.Validate(limit, validation.Required, validation.Min(1)),
		"offset": validation.Validate(offset, validation.Min(0)),
	}.Filter()
	if err != nil {
		return nil, badInput(err, "invalid page request")
	}
	return s.repo.GetPokemonList(ctx, limit, offset)
}

// GetPokemonDetails returns the details of the creature identified by a
// numeric id or a name. Names are matched case-insensitively.
func (s *Service) GetPokemonDetails(ctx context.Context, nameOrID string) (PokemonDetails, error) {
	key := NormalizeKey(nameOrID)
	err := validation.Errors{
		"name_or_id": validation.Validate(key, validation.Required),
	}.Filter()
	if err != nil {
		return PokemonDetails{}, badInput(err, "invalid details request")
	}
	return s.repo.GetPokemonDetails(ctx, key)
}

// RefreshPokemonList drops every cached record so the next reads go remote.
func (s *Service) RefreshPokemonList(ctx context.Context) error {
	return s.repo.RefreshPokemonList(ctx)
}

// NormalizeKey trims and lower-cases a name or id lookup key.
func NormalizeKey(nameOrID string) string {
	return strings.ToLower(strings.TrimSpace(nameOrID))
}

func badInput(err error, message string) error {
	verr := goerrors.FromOzzoValidation(err, message)
	verr.Category = goerrors.CategoryBadInput
	return verr.WithTextCode(TextCodeInvalidArgument)
}
