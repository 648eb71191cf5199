package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/graft/internal/render"
	"github.com/aretw0/graft/internal/treefile"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <tree-file>",
	Short: "Print a tree file's wired tree and tracking ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gr := newGrafter(cmd)

		doc, err := treefile.Load(args[0])
		if err != nil {
			return err
		}
		root, err := doc.Build(gr)
		if err != nil {
			return err
		}

		printHeading(cmd, "tree")
		fmt.Fprint(cmd.OutOrStdout(), render.Tree(root))

		printHeading(cmd, "ledger")
		for i, e := range root.Ledger() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. key=%s handle=%s state=%v\n",
				i+1, e.Key, e.Handle, e.Child().State())
		}
		if len(root.Ledger()) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no tracked keys")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
