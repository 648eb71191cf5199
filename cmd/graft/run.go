package main

import (
	"fmt"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/graft/internal/render"
	"github.com/aretw0/graft/internal/treefile"
)

var runCmd = &cobra.Command{
	Use:   "run <tree-file>",
	Short: "Replay a tree file's commit script and print the resulting tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gr := newGrafter(cmd)

		doc, err := treefile.Load(args[0])
		if err != nil {
			return err
		}
		final, err := doc.Run(gr)
		if err != nil {
			return err
		}

		printHeading(cmd, fmt.Sprintf("tree after %d commit(s)", len(doc.Commits)))
		fmt.Fprint(cmd.OutOrStdout(), render.Tree(final))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func printHeading(cmd *cobra.Command, text string) {
	p := termenv.ColorProfile()
	styled := termenv.String(text).Foreground(p.Color("#818cf8")).Bold()
	fmt.Fprintln(cmd.OutOrStdout(), styled)
}
