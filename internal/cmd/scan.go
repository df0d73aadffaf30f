package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cheerioskun/textfinder/internal/collector"
	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/registry"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	listFiles bool
	maxListed int
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan folder...",
	Short: "Show which files of the given folders would be uploaded",
	Long: `Collect the given folders the same way a search does and report what was
found, without contacting the server.

This command shows:
- Supported file count per folder
- Total upload size
- The supported extensions and size limit

Examples:
  textfinder scan ~/Documents/Invoices
  textfinder scan ./reports ./contracts --files
  textfinder scan ./exports --fallback`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&listFiles, "files", false, "list the collected files")
	scanCmd.Flags().IntVar(&maxListed, "max-files", 50, "maximum number of files listed with --files (0 for all)")
}

func runScan(cmd *cobra.Command, args []string) error {
	folders, err := parseFolderArgs(args)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	reg := registry.New(nil)
	if err := addFolders(cmd.Context(), fs, reg, folders, cfg.Fallback, false); err != nil {
		return err
	}

	files := reg.Files()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, folderTable(reg.Folders(), files))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total files: %d\n", files.Len())
	fmt.Fprintf(out, "Total size: %s\n", formatBytes(files.TotalSize()))

	filter := collector.NewFilter()
	fmt.Fprintf(out, "Supported extensions: %s\n", strings.Join(filter.Extensions(), " "))
	fmt.Fprintf(out, "Size limit: %s per file\n", formatBytes(collector.MaxFileSize))

	if listFiles {
		fmt.Fprintln(out)
		fmt.Fprintln(out, fileTable(files, maxListed))
		if maxListed > 0 && files.Len() > maxListed {
			fmt.Fprintf(out, "... and %d more files\n", files.Len()-maxListed)
		}
	}

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "%s\n", reg.Status())
	}
	return nil
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
}

func folderTable(folders []models.SelectedFolder, files *models.FileSet) *table.Table {
	t := newTable().Headers("Folder", "Location", "Files", "Mode")
	for _, f := range folders {
		mode := "directory"
		if f.IsFallback() {
			mode = "file list"
		}
		t.Row(f.RootName, f.Location(), fmt.Sprintf("%d", files.CountUnder(f.RootName)), mode)
	}
	return t
}

func fileTable(files *models.FileSet, limit int) *table.Table {
	t := newTable().Headers("File", "Path", "Size")
	for i, f := range files.Files() {
		if limit > 0 && i >= limit {
			break
		}
		t.Row(f.Name, f.RelativePath, formatBytes(f.Size))
	}
	return t
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
