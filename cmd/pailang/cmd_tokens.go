package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"pailang/internal/token"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Inspect and mint token identifiers",
}

var tokensGenerateCmd = &cobra.Command{
	Use:   "generate [value] [category]",
	Short: "Mint (or look up) the identifier for a value in a category",
	Long: `Generates the token identifier for a value in a category and records it
in the registry. Generation is idempotent: the same value in the same
category always yields the same identifier.

Example:
  pailang tokens generate "process data" task`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, closer, err := openRegistry()
		if err != nil {
			return err
		}
		defer closer()

		id, err := token.NewGenerator(reg, logger).GenerateID(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var tokensRegisterCmd = &cobra.Command{
	Use:   "register [value] [category] [id]",
	Short: "Bind an explicit identifier to a value",
	Long: `Registers an explicit identifier for a value. If the identifier's numeric
suffix is ahead of the category counter, the counter advances past it so
future minted identifiers never collide with it.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, closer, err := openRegistry()
		if err != nil {
			return err
		}
		defer closer()

		if err := token.NewGenerator(reg, logger).RegisterID(args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "registered")
		return nil
	},
}

var tokensResolveCmd = &cobra.Command{
	Use:   "resolve [id]",
	Short: "Resolve an identifier back to its value and category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, closer, err := openRegistry()
		if err != nil {
			return err
		}
		defer closer()

		value, category, err := token.NewGenerator(reg, logger).Resolve(args[0])
		if err != nil {
			if errors.Is(err, token.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "not found")
				return nil
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", value, category)
		return nil
	},
}

var tokensListCmd = &cobra.Command{
	Use:   "list [category]",
	Short: "List registered tokens, optionally for one category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, closer, err := openRegistry()
		if err != nil {
			return err
		}
		defer closer()

		categories := reg.Categories()
		if len(args) == 1 {
			categories = []string{args[0]}
		}

		for _, cat := range categories {
			values := reg.Values(cat)
			names := make([]string, 0, len(values))
			for v := range values {
				names = append(names, v)
			}
			sort.Strings(names)
			for _, v := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\t%s\t%s\n",
					token.Prefix(cat), values[v], cat, v)
			}
		}
		return nil
	},
}

func init() {
	tokensCmd.AddCommand(tokensGenerateCmd)
	tokensCmd.AddCommand(tokensRegisterCmd)
	tokensCmd.AddCommand(tokensResolveCmd)
	tokensCmd.AddCommand(tokensListCmd)
}
