package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/internal/treefile"
	"github.com/vango-dev/reflow/pkg/protocol"
	"github.com/vango-dev/reflow/pkg/vdom"
)

func diffCmd() *cobra.Command {
	var stats bool

	cmd := &cobra.Command{
		Use:   "diff OLD.yaml NEW.yaml",
		Short: "Compare two trees",
		Long: `Compare two trees written as YAML and print the edits that turn the
first into the second.

A tree file holds one node: a string is text, null renders nothing, and a
mapping is an element with tag, key, attrs, on and children fields.

Examples:
  reflow diff before.yaml after.yaml
  reflow diff --stats before.yaml after.yaml`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("E140").
					WithDetailf("diff takes exactly two tree files, got %d.", len(args)).
					WithSuggestion("reflow diff OLD.yaml NEW.yaml")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := treefile.Load(args[0])
			if err != nil {
				return err
			}
			next, err := treefile.Load(args[1])
			if err != nil {
				return err
			}
			runDiff(cmd.OutOrStdout(), prev, next, stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&stats, "stats", false, "Print operation counts and encoded size")

	return cmd
}

func runDiff(w io.Writer, prev, next vdom.Node, stats bool) {
	d, changed := vdom.Compare(prev, next)
	if !changed {
		success(w, "No differences")
		return
	}

	printDiff(w, d, 0)
	if !stats {
		return
	}

	size := len(protocol.EncodePatches(&protocol.PatchesMessage{Seq: 1, Diff: &d}))
	fmt.Fprintln(w)
	printStats(w, d)
	info(w, "%-16s %d bytes", "encoded", size)
}
