package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"media-resolver/internal/catalog"
	"media-resolver/internal/loader"
	"media-resolver/internal/logging"
	"media-resolver/internal/mediaitem"
	"media-resolver/internal/resolver"
)

const (
	// Default timeout for catalog operations other than import
	defaultTimeout = 30 * time.Second
	// Default catalog database path
	defaultDatabase = catalog.DefaultDatabase
)

// options are the flags shared by every command.
type options struct {
	database string
	manifest string
	yes      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}
	command, rest := args[0], args[1:]

	opts, operands, err := parseFlags(rest, stderr)
	if err != nil {
		return 2
	}

	// Create a context that cancels on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if logging.GetLevel() < logging.LevelWarn {
		logging.SetLevel(logging.LevelWarn)
	}

	switch command {
	case "import", "show", "delete", "status", "clear":
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		// Sanitize command input using allowlist to break taint chain
		fmt.Fprintf(stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage(stderr)
		return 1
	}

	store, err := catalog.Open(ctx, opts.database)
	if err != nil {
		fmt.Fprintf(stderr, "Error: Failed to open catalog: %v\n", err)
		fmt.Fprintf(stderr, "Make sure CATALOG_DB or -db is set correctly (current: %s)\n", opts.database)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(stderr, "Warning: failed to close catalog: %v\n", err)
		}
	}()

	switch command {
	case "import":
		err = importPaths(ctx, store, opts.manifest, operands, stdout)
	case "show":
		err = showEntry(ctx, store, operands, stdout)
	case "delete":
		err = deleteEntry(ctx, store, operands, stdout)
	case "status":
		err = showStatus(ctx, store, stdout)
	case "clear":
		err = clearCatalog(ctx, store, opts.yes, stdin, stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	fs := flag.NewFlagSet("catalogctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := options{}
	fs.StringVar(&opts.database, "db", envOr("CATALOG_DB", defaultDatabase), "catalog database path")
	fs.StringVar(&opts.manifest, "manifest", os.Getenv("RESOLVER_MANIFEST"), "plugin manifest used to read tags on import")
	fs.BoolVar(&opts.yes, "yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	return opts, fs.Args(), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// sanitizeCommand returns a safe representation of a command string for display.
// It uses an allowlist approach, replacing any character that is not alphanumeric,
// a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Media Resolver Catalog Management")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: catalogctl <command> [flags] [PATH...]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  import PATH...  - Resolve paths and store their metadata")
	fmt.Fprintln(w, "  show PATH...    - Print the stored entries as JSON")
	fmt.Fprintln(w, "  delete PATH...  - Remove entries")
	fmt.Fprintln(w, "  status          - Show entry count and last update")
	fmt.Fprintln(w, "  clear           - Remove every entry")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -db PATH        - Catalog database (default: $CATALOG_DB or "+defaultDatabase+")")
	fmt.Fprintln(w, "  -manifest PATH  - Plugin manifest for import (default: $RESOLVER_MANIFEST)")
	fmt.Fprintln(w, "  -yes            - Skip the clear confirmation")
}

// importResolver registers the manifest's plugins except the catalog, so
// imported metadata comes from the files themselves.
func importResolver(manifestPath string) (*resolver.Resolver, error) {
	m, err := loader.LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	filtered := &loader.Manifest{}
	for _, spec := range m.Plugins {
		if spec.Name != catalog.Name {
			filtered.Plugins = append(filtered.Plugins, spec)
		}
	}

	r := resolver.New()
	if _, err := loader.Apply(r, filtered); err != nil {
		if r.Len() == 0 {
			return nil, err
		}
		logging.Warn("%v", err)
	}
	return r, nil
}

func importPaths(ctx context.Context, store *catalog.Store, manifestPath string, paths []string, out io.Writer) error {
	if len(paths) == 0 {
		return errors.New("import needs at least one path")
	}

	r, err := importResolver(manifestPath)
	if err != nil {
		return err
	}
	defer r.UnregisterAll()

	results, err := r.LoadMany(ctx, paths)
	if err != nil {
		return err
	}

	var items, stored, failed int
	for _, res := range results {
		unreadable := make(map[string]bool)
		for _, d := range res.Diagnostics.Failures() {
			fmt.Fprintf(out, "Skipped: %v\n", d)
			unreadable[d.Path] = true
		}
		keep := make([]*mediaitem.Item, 0, len(res.Items))
		for _, item := range res.Items {
			if unreadable[item.URL] {
				failed++
				continue
			}
			keep = append(keep, item)
		}
		items += len(res.Items)
		n, err := store.ImportItems(ctx, keep)
		if err != nil {
			return fmt.Errorf("import %s: %w", res.Path, err)
		}
		stored += n
	}

	fmt.Fprintf(out, "Imported %d of %d item(s) from %d path(s).\n", stored, items, len(paths))
	if stored+failed < items {
		fmt.Fprintln(out, "Items that are ranges of a larger file are not stored.")
	}
	return nil
}

func showEntry(ctx context.Context, store *catalog.Store, paths []string, out io.Writer) error {
	if len(paths) == 0 {
		return errors.New("show needs at least one path")
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	var missing []string
	for _, p := range paths {
		e, err := store.Get(ctx, p)
		if errors.Is(err, catalog.ErrNotFound) {
			missing = append(missing, p)
			continue
		}
		if err != nil {
			return err
		}
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, strings.Join(missing, ", "))
	}
	return nil
}

func deleteEntry(ctx context.Context, store *catalog.Store, paths []string, out io.Writer) error {
	if len(paths) == 0 {
		return errors.New("delete needs at least one path")
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	removed := 0
	for _, p := range paths {
		ok, err := store.Delete(ctx, p)
		if err != nil {
			return err
		}
		if ok {
			removed++
		}
	}
	fmt.Fprintf(out, "Deleted %d of %d entr(ies).\n", removed, len(paths))
	return nil
}

func showStatus(ctx context.Context, store *catalog.Store, out io.Writer) error {
	// Add timeout to context for database operations
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	st, err := store.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Catalog: %s\n", st.Path)
	fmt.Fprintf(out, "Entries: %d\n", st.Entries)
	if st.LastUpdated.IsZero() {
		fmt.Fprintln(out, "Last updated: never")
	} else {
		fmt.Fprintf(out, "Last updated: %s\n", st.LastUpdated.Local().Format(time.RFC1123))
	}
	return nil
}

func clearCatalog(ctx context.Context, store *catalog.Store, yes bool, stdin io.Reader, out io.Writer) error {
	if !yes {
		if f, ok := stdin.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
			return errors.New("refusing to clear without a terminal; pass -yes")
		}
		ok, err := confirm(stdin, out, fmt.Sprintf("Remove every entry from %s? [y/N] ", store.Path()))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	n, err := store.Clear(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %d entr(ies).\n", n)
	return nil
}

func confirm(stdin io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
