package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheerioskun/textfinder/internal/offline"
	"github.com/cheerioskun/textfinder/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// cacheCmd groups the offline asset cache commands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the offline cache of the web client's assets",
}

var cacheServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web client cache-first in front of the search server",
	Long: `Install the web client's static assets into the local cache, drop older cache
versions and serve on --listen. GET requests outside /api/ are answered from
the cache and fall back to the server; everything else is passed through.

If the install fails nothing is cached and every request goes to the server.

Examples:
  textfinder cache serve
  textfinder cache serve --listen :8080 --server http://search.local:5055`,
	Args: cobra.NoArgs,
	RunE: runCacheServe,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the cached asset versions and their entries",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached asset version",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheServeCmd, cacheListCmd, cacheClearCmd)

	cacheCmd.PersistentFlags().String("cache-dir", "", "offline cache directory")
	cacheServeCmd.Flags().String("listen", "", "address to serve on")
}

func newStore() *offline.Store {
	return offline.NewStore(afero.NewOsFs(), cfg.CacheDir)
}

func runCacheServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker, err := offline.NewWorker(cfg.Server, newStore(), offline.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	if err != nil {
		return err
	}

	if err := worker.Start(ctx); err != nil {
		color.Yellow("Offline cache unavailable, passing requests through: %v", err)
	} else {
		color.Green("Cache %s ready", worker.CacheName())
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           worker,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", cfg.Server, cfg.Listen)
	utils.Info("Serving %s on %s (state %s)", cfg.Server, cfg.Listen, worker.State())

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func runCacheList(cmd *cobra.Command, args []string) error {
	store := newStore()
	names, err := store.Names()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintf(out, "No caches in %s\n", store.Root())
		return nil
	}

	t := newTable().Headers("Cache", "URL", "Status", "Stored")
	for _, name := range names {
		entries, err := store.Open(name).Entries()
		if err != nil {
			return fmt.Errorf("failed to read cache %s: %w", name, err)
		}
		for _, e := range entries {
			t.Row(name, e.URL, fmt.Sprintf("%d", e.Status), e.StoredAt.Local().Format("2006-01-02 15:04:05"))
		}
	}
	fmt.Fprintln(out, t)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store := newStore()
	unlock, err := store.Lock(cmd.Context())
	if err != nil {
		return err
	}
	defer unlock()

	names, err := store.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := store.Delete(name); err != nil {
			return err
		}
		utils.Info("Deleted cache %s", name)
	}
	color.Green("Deleted %d cache(s)", len(names))
	return nil
}
