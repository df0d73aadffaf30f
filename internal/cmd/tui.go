package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cheerioskun/textfinder/internal/registry"
	"github.com/cheerioskun/textfinder/internal/results"
	"github.com/cheerioskun/textfinder/internal/search"
	"github.com/cheerioskun/textfinder/internal/utils"
	"github.com/cheerioskun/textfinder/ui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	tuiQuery       string
	tuiDefaultBase bool
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui [folder[=base-path]...]",
	Short: "Start the interactive TUI interface",
	Long: `Start the interactive Terminal User Interface.

The TUI provides:
- A folder panel with one base path input per selected folder
- A search box that uploads the collected files with the query
- A results table with open-file and open-folder actions

Folders given as arguments are selected on start; "path=base" also sets the
folder's base path. With --session the selection is restored on start and
saved after every change.

Examples:
  textfinder tui
  textfinder tui ~/Documents/Invoices=/data/Invoices
  textfinder tui --session invoices.yaml --server http://search.local:5055`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVarP(&tuiQuery, "query", "q", "", "initial search term")
	tuiCmd.Flags().BoolVar(&tuiDefaultBase, "local", false, "use each folder's own path as its base path")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("the TUI needs a terminal; use 'textfinder search' for scripted use")
	}

	folders, err := parseFolderArgs(args)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	ctx := cmd.Context()
	reg := registry.New(nil)

	session, err := loadSession(ctx, fs, reg, cfg.Session)
	if err != nil {
		return err
	}
	if session != nil && tuiQuery == "" {
		tuiQuery = session.Query
	}

	if err := addFolders(ctx, fs, reg, folders, cfg.Fallback, tuiDefaultBase); err != nil {
		return err
	}

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "%s\n", reg.Status())
	}

	c := newClient()
	model := ui.NewAppModel(ui.Options{
		Fs:        fs,
		Registry:  reg,
		Submitter: search.NewSubmitter(reg, c),
		Actions:   results.NewActions(reg, c, utils.BrowserOpener{}),
		Server:    c.BaseURL(),
		Fallback:  cfg.Fallback,
		Session:   cfg.Session,
		Query:     tuiQuery,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Starting TUI...\n")
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
