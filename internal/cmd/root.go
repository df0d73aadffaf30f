package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/cheerioskun/textfinder/internal/client"
	"github.com/cheerioskun/textfinder/internal/config"
	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/registry"
	"github.com/cheerioskun/textfinder/internal/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cfg is resolved before every command runs
var cfg *config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "textfinder",
	Short: "Search the text of local folders through a document search server",
	Long: `TextFinder collects the supported documents of one or more local folders,
uploads them to a document search server and shows the matching lines and
pages. Matches can be opened in the server's viewers or revealed in their
folder.

Each selected folder needs its absolute path on the server's machine (the
base path) so that matches can be mapped back to real files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(viper.GetViper(), cmd)
		if err != nil {
			return err
		}
		utils.Init(cfg.LogFile, cfg.Debug)
		utils.Debug("Running %s with server %s", cmd.Name(), cfg.Server)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&config.File, "config", "", "config file (default .textfinder.yaml)")
	rootCmd.PersistentFlags().StringP("server", "s", config.DefaultConfig.Server, "search server base URL")
	rootCmd.PersistentFlags().Duration("timeout", config.DefaultConfig.Timeout, "request timeout (0 disables)")
	rootCmd.PersistentFlags().String("log-file", config.DefaultConfig.LogFile, "log file path")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("fallback", false, "read folders as flat file lists")
	rootCmd.PersistentFlags().String("session", "", "session file holding folders and base paths")
}

func newClient() *client.Client {
	return client.New(client.Config{BaseURL: cfg.Server, Timeout: cfg.Timeout})
}

// loadSession restores a saved selection into reg. A missing session file is
// not an error.
func loadSession(ctx context.Context, fs afero.Fs, reg *registry.Registry, path string) (*models.SessionFile, error) {
	if path == "" {
		return nil, nil
	}
	if ok, _ := afero.Exists(fs, path); !ok {
		return nil, nil
	}

	s, err := models.LoadSession(fs, path)
	if err != nil {
		return nil, err
	}

	n, err := reg.Restore(ctx, fs, s)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Restored %d of %d folder(s) from %s\n", n, len(s.Folders), path)
	}
	return s, nil
}
