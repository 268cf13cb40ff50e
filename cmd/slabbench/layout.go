package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pavanmanishd/slab"
)

type layoutRow struct {
	Name string `json:"name"`
	slab.Layout
	Wasted int `json:"wasted"`
}

func layouts() []layoutRow {
	rows := []layoutRow{
		{Name: "small", Layout: slab.LayoutFor[smallTask]()},
		{Name: "medium", Layout: slab.LayoutFor[mediumTask]()},
		{Name: "large", Layout: slab.LayoutFor[largeTask]()},
	}
	for i := range rows {
		rows[i].Wasted = rows[i].Layout.Wasted()
	}
	return rows
}

func newLayoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Show the page layout for each task size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := layouts()
			if g.jsonOut {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			return printLayouts(cmd.OutOrStdout(), rows)
		},
	}
}

func printLayouts(w io.Writer, rows []layoutRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIZE\tELEM\tHEADER\tPADDING\tFIT\tSLOTS\tWASTED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.Name, r.ElemSize, r.HeaderSize, r.Padding, r.Fit, r.NumValues, r.Wasted)
	}
	return tw.Flush()
}
