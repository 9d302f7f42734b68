package pokedex

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	calls     []string
	lastKey   string
	list      []Pokemon
	details   PokemonDetails
	err       error
	refreshed bool
}

func (s *stubRepository) GetPokemonList(ctx context.Context, limit, offset int) ([]Pokemon, error) {
	s.calls = append(s.calls, "GetPokemonList")
	return s.list, s.err
}

func (s *stubRepository) GetPokemonDetails(ctx context.Context, nameOrID string) (PokemonDetails, error) {
	s.calls = append(s.calls, "GetPokemonDetails")
	s.lastKey = nameOrID
	return s.details, s.err
}

func (s *stubRepository) RefreshPokemonList(ctx context.Context) error {
	s.calls = append(s.calls, "RefreshPokemonList")
	s.refreshed = true
	return s.err
}

func TestService_GetPokemonList(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates valid requests", func(t *testing.T) {
		repo := &stubRepository{list: []Pokemon{{ID: 1, Name: "Bulbasaur"}}}
		svc := NewService(repo)

		got, err := svc.GetPokemonList(ctx, 20, 0)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, []string{"GetPokemonList"}, repo.calls)
	})

	invalid := []struct {
		name          string
		limit, offset int
	}{
		{"zero limit", 0, 0},
		{"negative limit", -1, 0},
		{"negative offset", 20, -20},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubRepository{}
			svc := NewService(repo)

			_, err := svc.GetPokemonList(ctx, tt.limit, tt.offset)
			require.Error(t, err)
			assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
			assert.Empty(t, repo.calls)

			var gerr *goerrors.Error
			require.True(t, goerrors.As(err, &gerr))
			assert.Equal(t, TextCodeInvalidArgument, gerr.TextCode)
			assert.NotEmpty(t, gerr.ValidationErrors)
		})
	}

	t.Run("propagates repository errors", func(t *testing.T) {
		repoErr := errors.New("boom")
		svc := NewService(&stubRepository{err: repoErr})

		_, err := svc.GetPokemonList(ctx, 20, 0)
		assert.ErrorIs(t, err, repoErr)
	})
}

func TestService_GetPokemonDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes the key", func(t *testing.T) {
		repo := &stubRepository{details: PokemonDetails{ID: 25, Name: "Pikachu"}}
		svc := NewService(repo)

		got, err := svc.GetPokemonDetails(ctx, "  PiKaChu ")
		require.NoError(t, err)
		assert.Equal(t, 25, got.ID)
		assert.Equal(t, "pikachu", repo.lastKey)
	})

	t.Run("rejects blank keys", func(t *testing.T) {
		repo := &stubRepository{}
		svc := NewService(repo)

		_, err := svc.GetPokemonDetails(ctx, "   ")
		require.Error(t, err)
		assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
		assert.Empty(t, repo.calls)
	})
}

func TestService_RefreshPokemonList(t *testing.T) {
	repo := &stubRepository{}
	svc := NewService(repo)

	require.NoError(t, svc.RefreshPokemonList(context.Background()))
	assert.True(t, repo.refreshed)
}
