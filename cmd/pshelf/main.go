package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	rootCmd = &cobra.Command{
		Use:   "pshelf",
		Short: "PrintShelf - catalog your 3D printing projects",
		Long: `pshelf (PrintShelf) keeps a catalog of 3D printing projects.
Every subdirectory of a watched root is a project; its files are tracked,
tagged, annotated and previewed from a local SQLite database.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config-dir", "", "configuration directory (default is the user config dir + /PrintShelf)")
	rootCmd.PersistentFlags().String("db", "", "catalog database file (default is <config-dir>/PrintShelf.db)")
	rootCmd.PersistentFlags().Bool("db-network", false, "tune SQLite for a database on a network share")
	rootCmd.PersistentFlags().String("thumbnailer", "", "thumbnail tool to render model previews (default stl-thumb)")
	rootCmd.PersistentFlags().String("event-level", "info", "minimum level written to the event log")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Bind flags to viper
	for _, name := range []string{"config-dir", "db", "db-network", "thumbnailer", "event-level", "verbose", "quiet", "no-color"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	// Read in environment variables that match, e.g. PSHELF_CONFIG_DIR
	viper.SetEnvPrefix("PSHELF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setupLogging(cmd *cobra.Command, args []string) error {
	util.SetColors(!viper.GetBool("no-color") && util.IsTerminal(os.Stderr.Fd()))
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
	return nil
}

func main() {
	err := rootCmd.Execute()
	util.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
