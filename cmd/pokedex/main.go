package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-pokedex/internal/config"
	"github.com/goliatone/go-pokedex/pkg/di"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		log.Error("pokedex failed", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, in io.Reader, out io.Writer) error {
	switch command {
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	case "serve", "list", "show", "refresh", "browse":
	default:
		fmt.Fprintf(out, "Unknown command: %s\n\n", command)
		printUsage(out)
		return fmt.Errorf("unknown command %q", command)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	c, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	return dispatch(ctx, c, command, args, in, out)
}

func dispatch(ctx context.Context, c *di.Container, command string, args []string, in io.Reader, out io.Writer) error {
	switch command {
	case "serve":
		return serveCmd(ctx, c, args)
	case "list":
		return listCmd(ctx, c, args, out)
	case "show":
		return showCmd(ctx, c, args, out)
	case "refresh":
		return refreshCmd(ctx, c, out)
	case "browse":
		return browseCmd(ctx, c, in, out)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `pokedex - browse the Pokémon catalog with a local cache

USAGE:
  pokedex <command> [options]

COMMANDS:
  serve     Serve the JSON API (-addr overrides POKEDEX_HTTP_ADDR)
  list      Print a page of the catalog (-limit, -offset, -json)
  show      Print the details of one Pokémon by name or id (-json)
  refresh   Clear the local cache
  browse    Interactive list: n next page, /text search, r refresh, <id> details, q quit
  help      Show this help message

ENVIRONMENT:
  POKEDEX_LOG_LEVEL, POKEDEX_LOG_FORMAT, POKEDEX_HTTP_ADDR, POKEDEX_API_BASE_URL,
  POKEDEX_HTTP_TIMEOUT, POKEDEX_DB_DRIVER, POKEDEX_DATABASE_URL, POKEDEX_PAGE_SIZE,
  POKEDEX_MEMORY_CACHE, POKEDEX_CACHE_CAPACITY, POKEDEX_CACHE_TTL, POKEDEX_CORS_ORIGINS
  A .env file in the working directory is loaded when present.`)
}
