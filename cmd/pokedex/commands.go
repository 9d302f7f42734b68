package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-pokedex/pkg/di"
	"github.com/goliatone/go-pokedex/pokedex"
)

const shutdownTimeout = 15 * time.Second

func serveCmd(ctx context.Context, c *di.Container, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", c.Config().HTTPAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := c.Logger()
	srv := &http.Server{
		Addr:         *addr,
		Handler:      c.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * c.Config().HTTPTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "http server failed")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "server forced to shutdown")
	}
	logger.Info("server stopped")
	return nil
}

func listCmd(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(out)
	limit := fs.Int("limit", c.Config().PageSize, "page size")
	offset := fs.Int("offset", 0, "offset of the first entry")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := c.Service().GetPokemonList(ctx, *limit, *offset)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(out, list)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tIMAGE")
	for _, p := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.ImageURL)
	}
	return tw.Flush()
}

func showCmd(ctx context.Context, c *di.Container, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(out)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return goerrors.New("show takes exactly one name or id", goerrors.CategoryBadInput).
			WithTextCode(pokedex.TextCodeInvalidArgument)
	}

	details, err := c.Service().GetPokemonDetails(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(out, details)
	}
	printDetails(out, details)
	return nil
}

func refreshCmd(ctx context.Context, c *di.Container, out io.Writer) error {
	if err := c.Service().RefreshPokemonList(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Local cache cleared.")
	return nil
}

func printDetails(out io.Writer, d pokedex.PokemonDetails) {
	types := make([]string, 0, len(d.Types))
	for _, t := range d.Types {
		types = append(types, t.Name)
	}

	fmt.Fprintf(out, "#%03d %s\n", d.ID, d.Name)
	fmt.Fprintf(out, "Height: %.1f m\n", d.Height)
	fmt.Fprintf(out, "Weight: %.1f kg\n", d.Weight)
	fmt.Fprintf(out, "Types:  %s\n", strings.Join(types, ", "))
	if d.ImageURL != "" {
		fmt.Fprintf(out, "Image:  %s\n", d.ImageURL)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, s := range d.Stats {
		fmt.Fprintf(tw, "  %s\t%d\n", s.Name, s.BaseStat)
	}
	tw.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
