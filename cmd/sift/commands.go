package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/mmcdole/sift/internal/adapter"
	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/query"
)

// Searcher is the coordinator surface used by one-shot mode
type Searcher interface {
	OnQueryTextChanged(text string)
	Subscribe(fn func(query.State)) (unsubscribe func())
}

// runOnce issues text through the coordinator and prints the settled result
func runOnce(ctx context.Context, s Searcher, text string, stdout, stderr io.Writer) error {
	done := make(chan query.State, 1)
	unsubscribe := s.Subscribe(func(st query.State) {
		if st.Query != text {
			return
		}
		if st.Status == query.StatusFulfilled || st.Status == query.StatusFailed {
			select {
			case done <- st:
			default:
			}
		}
	})
	defer unsubscribe()

	s.OnQueryTextChanged(text)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case st := <-done:
		if st.Status == query.StatusFailed {
			return fmt.Errorf("query %q failed (%s): %w", text, st.Reason(), st.Err)
		}
		printItems(stdout, st.Items)
		if page := st.Page(); page.Truncated() {
			fmt.Fprintf(stderr, "showing %d of %d matches\n", len(page.Items), page.Total)
		}
		return nil
	}
}

// printItems writes one tab-separated "id label" line per item
func printItems(w io.Writer, items []domain.Item) {
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\n", item.ID, item.Label)
	}
}

// runImport loads a JSON file of items into the configured collection
func runImport(cfg *adapter.Config, path string, logger *slog.Logger) error {
	if cfg.Provider.Collection == "" {
		return fmt.Errorf("a collection name is required to import")
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	items, err := adapter.ReadItems(file)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SaveItems(cfg.Provider.Collection, items); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}

	logger.Info("imported collection", "collection", cfg.Provider.Collection, "items", len(items))
	fmt.Printf("Imported %d items into %q\n", len(items), cfg.Provider.Collection)
	return nil
}

// runListCollections prints the stored catalog collections with item counts
func runListCollections(cfg *adapter.Config, w io.Writer) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	names, err := s.Collections()
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range names {
		items, _ := s.GetItems(name)
		updated := "unknown"
		if at, ok := s.UpdatedAt(name); ok {
			updated = at.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%d items\tupdated %s\n", name, len(items), updated)
	}
	return nil
}

// runSetTokenFlow prompts for the HTTP provider's bearer token (hidden input)
// and saves it with the rest of the configuration.
func runSetTokenFlow(cfg *adapter.Config) error {
	fmt.Println()
	fmt.Println("Search API Token")
	fmt.Println("━━━━━━━━━━━━━━━━")

	if cfg.Provider.URL == "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Search API URL: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read URL: %w", err)
		}
		cfg.Provider.URL = strings.TrimSpace(input)
	}

	fmt.Print("Token: ")
	tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	fmt.Println() // Add newline after hidden input

	cfg.Provider.Type = adapter.ProviderTypeHTTP
	cfg.Provider.Token = strings.TrimSpace(string(tokenBytes))
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := adapter.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Println("Saved.")
	return nil
}
