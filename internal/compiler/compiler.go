// Package compiler wires the mapper, tree builder and synthesizer into the
// compilation pipeline: canonical {tokens, relationships} in, one well-formed
// symbolic expression string out.
package compiler

import (
	"fmt"

	"go.uber.org/zap"

	"pailang/internal/registry"
	"pailang/internal/semantic"
	"pailang/internal/synth"
	"pailang/internal/token"
)

// Compiler compiles mapped semantic structures into symbolic expression
// strings. It holds the token generator (and through it the registry); the
// expression tree itself is rebuilt from scratch on every call and discarded
// after synthesis.
//
// A Compiler is single-threaded: it shares the registry's no-internal-locking
// contract.
type Compiler struct {
	gen    *token.Generator
	mapper *semantic.Mapper
	logger *zap.Logger
}

// New builds a compiler over a registry.
func New(reg *registry.Registry, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	gen := token.NewGenerator(reg, logger)
	return &Compiler{
		gen:    gen,
		mapper: semantic.NewMapper(gen, logger),
		logger: logger,
	}
}

// Generator exposes the identifier generator for callers that mint or
// resolve tokens outside a full compilation.
func (c *Compiler) Generator() *token.Generator {
	return c.gen
}

// Mapper exposes the semantic mapper.
func (c *Compiler) Mapper() *semantic.Mapper {
	return c.mapper
}

// Compile synthesizes the expression string for a mapping.
//
// With no relationships but at least one token, tree building is skipped and
// the first token's identifier is emitted directly. With neither, the result
// is the empty string.
func (c *Compiler) Compile(mapping semantic.Mapping) (string, error) {
	if len(mapping.Relationships) == 0 {
		if len(mapping.Tokens) > 0 {
			c.logger.Debug("no relationships; falling back to first token",
				zap.String("id", mapping.Tokens[0].ID))
			return mapping.Tokens[0].ID, nil
		}
		return "", nil
	}

	tree, err := synth.NewBuilder(c.logger).Build(mapping.Relationships)
	if err != nil {
		return "", fmt.Errorf("failed to build expression tree: %w", err)
	}

	out := synth.Synthesize(tree)
	c.logger.Debug("compiled expression",
		zap.Int("tokens", len(mapping.Tokens)),
		zap.Int("relationships", len(mapping.Relationships)),
		zap.String("expression", out))
	return out, nil
}

// CompileRecords maps flat entity and relationship records, then compiles.
// This is the entry point for upstream stages that emit the flat contract.
func (c *Compiler) CompileRecords(entities []semantic.Entity, records []semantic.Record) (string, error) {
	tokens, err := c.mapper.MapEntities(entities)
	if err != nil {
		return "", err
	}
	rels, err := c.mapper.MapRecords(records)
	if err != nil {
		return "", err
	}
	return c.Compile(semantic.Mapping{Tokens: tokens, Relationships: rels})
}

// CompileCommands maps a command hierarchy, then compiles.
func (c *Compiler) CompileCommands(roots []*semantic.Command) (string, error) {
	mapping, err := c.mapper.MapCommands(roots)
	if err != nil {
		return "", err
	}
	return c.Compile(mapping)
}
