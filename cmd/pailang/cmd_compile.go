package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pailang/internal/semantic"
)

// compileDoc is the JSON document the compile command accepts. Either a flat
// entity/relationship list or a command hierarchy may be supplied; when both
// are present the hierarchy is compiled and the flat lists are ignored.
type compileDoc struct {
	Entities      []entityDoc  `json:"entities"`
	Relationships []recordDoc  `json:"relationships"`
	Commands      []*commandDoc `json:"commands"`
}

type entityDoc struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type recordDoc struct {
	Type        string   `json:"type"`
	Source      string   `json:"source,omitempty"`
	Target      string   `json:"target,omitempty"`
	Tokens      []string `json:"tokens,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	TrueBranch  string   `json:"trueBranch,omitempty"`
	FalseBranch string   `json:"falseBranch,omitempty"`
	Token       string   `json:"token,omitempty"`
	Count       int      `json:"count,omitempty"`
}

type commandDoc struct {
	Name       string            `json:"name"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Children   []*commandDoc     `json:"children,omitempty"`
}

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a semantic document to a pAI-Lang expression",
	Long: `Reads a JSON document of categorized entities and typed relationships
(or a command hierarchy) and prints the compiled pAI-Lang expression.

Pass "-" or no argument to read from stdin.

Example document:
  {
    "entities": [
      {"type": "task_name", "value": "collect data"},
      {"type": "task_name", "value": "process data"}
    ],
    "relationships": [
      {"type": "sequence", "source": "T01", "target": "T02"}
    ]
  }`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompile,
}

func runCompile(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var doc compileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse input document: %w", err)
	}

	comp, closer, err := openCompiler(cmd.Context())
	if err != nil {
		return err
	}
	defer closer()

	var out string
	if len(doc.Commands) > 0 {
		out, err = comp.CompileCommands(toCommands(doc.Commands))
	} else {
		out, err = comp.CompileRecords(toEntities(doc.Entities), toRecords(doc.Relationships))
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func toEntities(docs []entityDoc) []semantic.Entity {
	out := make([]semantic.Entity, len(docs))
	for i, d := range docs {
		out[i] = semantic.Entity{Type: d.Type, Value: d.Value}
	}
	return out
}

func toRecords(docs []recordDoc) []semantic.Record {
	out := make([]semantic.Record, len(docs))
	for i, d := range docs {
		out[i] = semantic.Record{
			Type:        d.Type,
			Source:      d.Source,
			Target:      d.Target,
			Tokens:      d.Tokens,
			Condition:   d.Condition,
			TrueBranch:  d.TrueBranch,
			FalseBranch: d.FalseBranch,
			Token:       d.Token,
			Count:       d.Count,
		}
	}
	return out
}

func toCommands(docs []*commandDoc) []*semantic.Command {
	out := make([]*semantic.Command, len(docs))
	for i, d := range docs {
		out[i] = &semantic.Command{
			Name:       d.Name,
			Parameters: d.Parameters,
			Children:   toCommands(d.Children),
		}
	}
	return out
}
