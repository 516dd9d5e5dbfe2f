package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Token registry maintenance",
}

var registryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show registry size per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, closer, err := openRegistry()
		if err != nil {
			return err
		}
		defer closer()

		total := 0
		for _, cat := range reg.Categories() {
			n := len(reg.Values(cat))
			total += n
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %4d tokens  next suffix %d\n",
				cat, n, reg.Counter(cat))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "total        %4d tokens\n", total)
		return nil
	},
}

func init() {
	registryCmd.AddCommand(registryStatsCmd)
}
