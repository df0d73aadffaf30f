package cmd

import (
	"fmt"

	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/registry"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var sessionQuery string

// sessionCmd groups the session file commands
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create and inspect session files",
	Long: `A session file remembers the selected folders and their base paths so they
do not have to be entered on every run. Pass it to other commands with
--session.`,
}

var sessionSaveCmd = &cobra.Command{
	Use:   "save folder[=base-path]...",
	Short: "Add folders to the session file named by --session",
	Long: `Select the given folders, on top of any already in the session file, and
write the result back.

Examples:
  textfinder session save ~/docs=/srv/share/docs --session work.yaml
  textfinder session save ./invoices=D:/Invoices ./reports=D:/Reports --session work.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSessionSave,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the folders of the session file named by --session",
	Args:  cobra.NoArgs,
	RunE:  runSessionShow,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionSaveCmd, sessionShowCmd)

	sessionSaveCmd.Flags().StringVarP(&sessionQuery, "query", "q", "", "search term to store with the session")
}

func requireSession() error {
	if cfg.Session == "" {
		return fmt.Errorf("no session file given; pass --session")
	}
	return nil
}

func runSessionSave(cmd *cobra.Command, args []string) error {
	if err := requireSession(); err != nil {
		return err
	}

	folders, err := parseFolderArgs(args)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	ctx := cmd.Context()
	reg := registry.New(nil)

	existing, err := loadSession(ctx, fs, reg, cfg.Session)
	if err != nil {
		return err
	}
	if sessionQuery == "" && existing != nil {
		sessionQuery = existing.Query
	}

	if err := addFolders(ctx, fs, reg, folders, cfg.Fallback, false); err != nil {
		return err
	}

	if err := models.SaveSession(fs, cfg.Session, reg.Snapshot(sessionQuery)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d folder(s) to %s\n", reg.Len(), cfg.Session)
	for _, f := range reg.Folders() {
		if f.BasePath == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s has no base path yet\n", f.RootName)
		}
	}
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if err := requireSession(); err != nil {
		return err
	}

	s, err := models.LoadSession(afero.NewOsFs(), cfg.Session)
	if err != nil {
		return err
	}

	t := newTable().Headers("Folder", "Local path", "Base path", "Mode")
	for _, f := range s.Folders {
		mode := "directory"
		if f.Fallback {
			mode = "file list"
		}
		base := f.BasePath
		if base == "" {
			base = models.NotApplicable
		}
		t.Row(f.RootName, f.Path, base, mode)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, t)
	if s.Query != "" {
		fmt.Fprintf(out, "Query: %s\n", s.Query)
	}
	fmt.Fprintf(out, "Saved: %s\n", s.SavedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}
