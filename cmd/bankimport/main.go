package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/ledgerkit/bankimport/pkg/config"
	"github.com/ledgerkit/bankimport/pkg/models"
	"github.com/ledgerkit/bankimport/pkg/parser"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "bankimport",
	Short: "Bank statement import tooling",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Parse a statement file and print the normalized rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := buildRegistry(cmd)
		if err != nil {
			return err
		}
		return previewFile(registry, args[0])
	},
}

var manifestCmd = &cobra.Command{
	Use:   "manifest <file>",
	Short: "Preview every statement listed in a YAML manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := buildRegistry(cmd)
		if err != nil {
			return err
		}
		manifest, err := models.ManifestFromFile(args[0])
		if err != nil {
			return err
		}
		for _, ref := range manifest.Statements {
			path, err := ref.Path()
			if err != nil {
				return err
			}
			fmt.Printf("== %s\n", path)
			if err := previewFile(registry, path); err != nil {
				fmt.Printf("   error: %v\n", err)
			}
		}
		return nil
	},
}

func buildRegistry(cmd *cobra.Command) (*parser.Registry, error) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "bankimport",
		Level:  level,
	})

	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return parser.New(logger, loc), nil
}

func previewFile(registry *parser.Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	res := registry.SniffAndParse(data, filepath.Base(path))
	if !res.OK {
		return fmt.Errorf("parse failed: %s", strings.Join(res.Errors, "; "))
	}

	for _, row := range res.Rows {
		fmt.Printf("%s  %12s  %-14s  %s\n",
			row.TxnTime.Format("2006-01-02 15:04:05"),
			row.Amount.StringFixed(2),
			row.Fingerprint,
			row.Description)
	}
	for _, re := range res.RowErrors {
		fmt.Printf("row %d skipped: %s\n", re.Row, re.Reason)
	}
	for _, msg := range res.Errors {
		fmt.Printf("note: %s\n", msg)
	}
	fmt.Printf("%d rows, %d rejected\n", len(res.Rows), len(res.RowErrors))

	if verbose && len(res.Rows) > 0 {
		pp.Println(res.Rows)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Dump parsed rows in full")
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(manifestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
