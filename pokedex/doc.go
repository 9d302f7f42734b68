// Package pokedex holds the domain models of the catalog, the Repository
// contract the data layer implements and the Service use cases the screens
// and the HTTP surface call.
//
// # Models
//
// Pokemon is a list entry, PokemonDetails the full record. Both carry display
// ready values: names are capitalised, stat names are title cased and height
// and weight are expressed in metres and kilograms.
//
// # Use cases
//
//	svc := pokedex.NewService(repo)
//	page, err := svc.GetPokemonList(ctx, 20, 0)
//	details, err := svc.GetPokemonDetails(ctx, "Pikachu")
//	err = svc.RefreshPokemonList(ctx)
//
// Invalid input is reported as a go-errors bad input error before the
// repository is reached.
package pokedex
