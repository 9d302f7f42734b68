package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-pokedex/pkg/di"
	"github.com/goliatone/go-pokedex/viewmodel"
)

// browseCmd runs the list screen on a line based terminal. Every command
// waits for the model to settle before the new state is printed.
func browseCmd(ctx context.Context, c *di.Container, in io.Reader, out io.Writer) error {
	list := c.NewListModel()
	defer list.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	list.Start()
	list.Wait()
	renderList(out, list)

	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}

		switch {
		case line == "":
			continue
		case line == "q":
			return nil
		case line == "n":
			list.LoadMore()
		case line == "r":
			list.RefreshList()
		case strings.HasPrefix(line, "/"):
			list.OnSearchQueryChanged(strings.TrimPrefix(line, "/"))
		default:
			id, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintf(out, "Unknown command %q\n", line)
				continue
			}
			list.OnPokemonClick(id)
			showDetails(c, id, out)
			continue
		}

		list.Wait()
		renderList(out, list)
	}
}

func renderList(out io.Writer, list *viewmodel.ListModel) {
	select {
	case state, ok := <-list.Updates():
		if ok {
			printListState(out, state)
		}
	default:
	}

	for {
		select {
		case ev, ok := <-list.Events():
			if !ok {
				return
			}
			fmt.Fprintf(out, "! %s\n", ev.Message)
		default:
			return
		}
	}
}

func printListState(out io.Writer, state viewmodel.ListState) {
	switch s := state.(type) {
	case viewmodel.ListLoading:
		fmt.Fprintln(out, "Loading...")
	case viewmodel.ListError:
		fmt.Fprintf(out, "Error: %s (r to retry)\n", s.Message)
	case viewmodel.ListSuccess:
		if len(s.Pokemon) == 0 {
			fmt.Fprintln(out, "No Pokémon found.")
		}
		for _, p := range s.Pokemon {
			fmt.Fprintf(out, "#%03d %s\n", p.ID, p.Name)
		}
		if s.CanLoadMore {
			fmt.Fprintln(out, "(n for more)")
		}
	}
}

func showDetails(c *di.Container, id int, out io.Writer) {
	m, err := c.NewDetailsModel(id)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	defer m.Close()

	m.Start()
	m.Wait()

	switch s := m.State().(type) {
	case viewmodel.DetailsSuccess:
		printDetails(out, s.Details)
	case viewmodel.DetailsError:
		fmt.Fprintf(out, "Error: %s\n", s.Message)
	}
}
