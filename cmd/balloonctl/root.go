// Root command for the balloonctl CLI.
package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"balloons/internal/blob"
)

const version = "0.1.0"

// Global flag values.
var (
	flagConfig string
	flagDriver string
	flagRoot   string
)

// store is the blob store opened by PersistentPreRunE for all subcommands.
var store blob.Store

var rootCmd = &cobra.Command{
	Use:   "balloonctl",
	Short: "Inspect and verify balloon blob stores",
	Long: `Balloonctl inspects the on-storage representation of a balloon world:
the types present, the object names stored under each type, individual
documents, and the integrity of named references between them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		cfg, err := loadConfig(flagConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		store, err = openStore(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if c, ok := store.(io.Closer); ok {
			return c.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .balloons.yaml or ~/.balloons/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "blob driver: fs|sqlite|postgres|s3 (default: fs)")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "store location: directory for fs, file for sqlite")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(namesCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(verifyCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the balloonctl version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("balloonctl", version)
	},
}
