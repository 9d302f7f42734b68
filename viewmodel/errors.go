package viewmodel

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-pokedex/internal/pokeapi"
)

const (
	MessageNoConnection = "No connection. Check your internet."
	MessageUnknown      = "Unknown error while fetching Pokémon"
	MessageRefresh      = "An unexpected error occurred during the refresh."
)

// ErrorMessage renders err for display.
func ErrorMessage(err error, isRefresh bool) string {
	var appErr *goerrors.Error
	if goerrors.As(err, &appErr) {
		switch {
		case appErr.TextCode == pokeapi.TextCodeNetworkUnavailable:
			return MessageNoConnection
		case appErr.Code >= 400:
			return fmt.Sprintf("Server failure (%d).", appErr.Code)
		case appErr.Message != "":
			return appErr.Message
		}
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	if isRefresh {
		return MessageRefresh
	}
	return MessageUnknown
}
