package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cheerioskun/textfinder/internal/export"
	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/registry"
	"github.com/cheerioskun/textfinder/internal/results"
	"github.com/cheerioskun/textfinder/internal/search"
	"github.com/cheerioskun/textfinder/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const previewWidth = 60

var (
	searchQuery  string
	viewRow      int
	openRow      int
	noLocalBase  bool
	noBrowser    bool
	saveSearched bool
	exportDir    string
	overwrite    bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [folder[=base-path]...] -q query",
	Short: "Run one search and print the matches",
	Long: `Upload the supported files of the given folders with a search term and print
the matches as a table.

A folder given without "=base-path" uses its own absolute path as the base
path, which is right when the server runs on this machine. Use --no-local-base
to require explicit base paths instead. Folders from --session are added
first.

Individual files can be given too. They are grouped as "Selected Files",
whose base path is their shared parent folder.

Examples:
  textfinder search ./invoices -q "net total"
  textfinder search ~/docs=/srv/share/docs -q contract --view 1
  textfinder search --session work.yaml -q deadline --open-folder 2
  textfinder search ./contracts -q indemnity --export ./hits`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search term")
	searchCmd.Flags().IntVar(&viewRow, "view", 0, "open match N (1-based) in the server's viewer")
	searchCmd.Flags().IntVar(&openRow, "open-folder", 0, "ask the server to open the folder of match N (1-based)")
	searchCmd.Flags().BoolVar(&noLocalBase, "no-local-base", false, "do not default base paths to the local folder path")
	searchCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print viewer URLs instead of opening them")
	searchCmd.Flags().BoolVar(&saveSearched, "save", false, "write the selection and query back to --session")
	searchCmd.Flags().StringVar(&exportDir, "export", "", "copy the matched files into this directory")
	searchCmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing files when exporting")
}

func runSearch(cmd *cobra.Command, args []string) error {
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
	if searchQuery == "" && session != nil {
		searchQuery = session.Query
	}

	if err := addFolders(ctx, fs, reg, folders, cfg.Fallback, !noLocalBase); err != nil {
		return err
	}

	c := newClient()
	submitter := search.NewSubmitter(reg, c)

	if err := submitter.Validate(searchQuery); err != nil {
		color.Red("Error: %s", err)
		return err
	}

	if saveSearched && cfg.Session != "" {
		if err := models.SaveSession(fs, cfg.Session, reg.Snapshot(searchQuery)); err != nil {
			return err
		}
	}

	if cfg.Verbose {
		color.Cyan("Searching %d file(s) on %s...", reg.Files().Len(), c.BaseURL())
	}

	result, err := submitter.Submit(ctx, searchQuery)
	if err != nil {
		color.Red("%s", search.FailureStatus(err))
		return err
	}

	rows := results.BuildRows(result.Matches)
	if len(rows) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), matchTable(rows))
	}
	color.Green("%s", result.Status())

	if exportDir != "" {
		summary, err := export.NewService(fs).ExportMatches(ctx, reg.Files(), rows, export.Options{
			DestinationPath: exportDir,
			Overwrite:       overwrite,
		})
		if err != nil {
			color.Red("Error: %s", err)
			return err
		}
		color.Green("Exported %d file(s) (%s) to %s", summary.FileCount, formatBytes(summary.TotalSize), summary.DestinationPath)
		if len(summary.Missing) > 0 {
			color.Yellow("%d matched file(s) were not in the selection", len(summary.Missing))
		}
	}

	var opener results.Opener = utils.BrowserOpener{}
	if noBrowser {
		opener = nil
	}
	actions := results.NewActions(reg, c, opener)

	if viewRow != 0 {
		row, err := pickRow(rows, viewRow)
		if err != nil {
			return err
		}
		target, err := actions.View(ctx, row, result.Query)
		if err != nil {
			return reportActionError(err)
		}
		color.Green("Opened %s", target)
	}

	if openRow != 0 {
		row, err := pickRow(rows, openRow)
		if err != nil {
			return err
		}
		msg, err := actions.OpenFolder(ctx, row)
		if err != nil {
			return reportActionError(err)
		}
		color.Green("%s", msg)
	}

	return nil
}

func matchTable(rows []results.Row) fmt.Stringer {
	t := newTable().Headers("#", "Path", "Position", "Preview")
	for i, r := range rows {
		t.Row(strconv.Itoa(i+1), r.Path, r.Position, truncate(r.Preview.Plain(), previewWidth))
	}
	return t
}

func pickRow(rows []results.Row, n int) (results.Row, error) {
	if n < 1 || n > len(rows) {
		return results.Row{}, fmt.Errorf("match %d does not exist (have %d)", n, len(rows))
	}
	return rows[n-1], nil
}

func reportActionError(err error) error {
	var missing *models.MissingBasePathError
	if errors.As(err, &missing) {
		color.Red("Error: %s (pass the folder as path=base-path)", err)
		return err
	}
	color.Red("Error: %s", err)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
