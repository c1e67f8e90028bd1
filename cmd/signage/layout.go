// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"signage/internal/layout"
)

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout <blocks>",
		Short: "Print the grid geometry for a block count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("block count must be a positive integer, got %q", args[0])
			}
			return printLayout(cmd.OutOrStdout(), n)
		},
	}
}

func printLayout(out io.Writer, n int) error {
	g := layout.Resolve(n)
	fmt.Fprintf(out, "grid %dx%d gap %dpx", g.Columns, g.Rows, g.Gap)
	if g.SpecialLayout {
		fmt.Fprint(out, " (spanning)")
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BLOCK\tX\tY\tWIDTH\tHEIGHT\tSPAN")
	for i, c := range layout.Cells(n) {
		r := c.Rect(g).Round(2)
		fmt.Fprintf(tw, "%d\t%g\t%g\t%g\t%g\t%dx%d\n", i+1, r.X, r.Y, r.W, r.H, c.ColumnSpan, c.RowSpan)
	}
	return tw.Flush()
}
