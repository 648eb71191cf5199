package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/graft"
)

var rootCmd = &cobra.Command{
	Use:   "graft",
	Short: "Graft composes immutable state updates over nested object trees",
	Long: `Graft loads a declarative tree file, wires propagation tracking over its
children, and replays commits without mutating any snapshot.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("verbose", false, "Print capability diagnostics to stderr")
}

// newGrafter builds the Grafter for a command, routing diagnostics to stderr
// when --verbose is set and discarding them otherwise.
func newGrafter(cmd *cobra.Command) *graft.Grafter {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return graft.New()
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), nil)
	return graft.New(graft.WithLogger(slog.New(handler)))
}
