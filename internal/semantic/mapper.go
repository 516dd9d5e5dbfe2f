package semantic

import (
	"fmt"

	"go.uber.org/zap"

	"pailang/internal/token"
)

// entityCategories maps upstream entity types to token categories.
// Unlisted entity types land in directive.
var entityCategories = map[string]string{
	"system_type":         token.CategorySystem,
	"context_parameter":   token.CategoryContext,
	"task_name":           token.CategoryTask,
	"resource_identifier": token.CategoryResource,
	"condition":           token.CategoryCondition,
	"action":              token.CategoryAction,
	"quantifier":          token.CategoryAction,
}

// commandCategories maps command-language command names to token categories.
var commandCategories = map[string]string{
	"INITIALIZE":        token.CategorySystem,
	"SET_CONTEXT":       token.CategoryContext,
	"EXECUTE":           token.CategoryTask,
	"EXECUTE_TASK":      token.CategoryTask,
	"CONDITIONAL":       token.CategoryCondition,
	"PARALLEL":          token.CategoryAction,
	"REPEAT":            token.CategoryAction,
	"BATCH_OPERATION":   token.CategoryBatch,
	"ACTIVATE_CONTEXT":  token.CategoryContext,
	"ALLOCATE_RESOURCE": token.CategoryResource,
	"APPLY_SECURITY":    token.CategorySystem,
	"EXECUTE_QUERY":     token.CategoryQuery,
}

// categoryKeyParams names the command parameter that carries the token value
// for each category. Commands outside the table use the ID parameter.
var categoryKeyParams = map[string]string{
	token.CategorySystem:    "SYSTEM",
	token.CategoryContext:   "CONTEXT",
	token.CategoryTask:      "TASK",
	token.CategoryCondition: "CONDITION",
	token.CategoryAction:    "PROCESS",
	token.CategoryResource:  "RESOURCE",
	token.CategoryQuery:     "QUERY",
	token.CategoryBatch:     "BATCH",
}

// Entity is one categorized surface concept extracted upstream.
type Entity struct {
	Type  string // entity type tag (task_name, condition, ...)
	Value string // surface value the token stands for
}

// Command is one node of an upstream command hierarchy.
type Command struct {
	Name       string
	Parameters map[string]string
	Children   []*Command
}

// Record is one typed relationship record from the flat mapper input
// contract: a kind tag plus the participant token values.
type Record struct {
	Type        string
	Source      string
	Target      string
	Tokens      []string
	Condition   string
	TrueBranch  string
	FalseBranch string
	Token       string
	Count       int
}

// Mapper converts upstream entity and command data into a Mapping, minting
// token identifiers through the generator as it goes.
type Mapper struct {
	gen    *token.Generator
	logger *zap.Logger
}

// NewMapper wires a mapper to an identifier generator.
func NewMapper(gen *token.Generator, logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{gen: gen, logger: logger}
}

// MapEntities mints a token for each entity. Entity order is preserved;
// duplicate values in a category reuse the same identifier.
func (m *Mapper) MapEntities(entities []Entity) ([]Token, error) {
	tokens := make([]Token, 0, len(entities))
	for _, e := range entities {
		category := entityCategories[e.Type]
		if category == "" {
			category = token.CategoryDirective
		}
		id, err := m.gen.GenerateID(e.Value, category)
		if err != nil {
			return nil, fmt.Errorf("failed to map entity %q: %w", e.Value, err)
		}
		tokens = append(tokens, Token{
			ID:       id,
			Category: category,
			Value:    token.Normalize(e.Value),
			Source:   e.Value,
		})
	}
	m.logger.Debug("mapped entities", zap.Int("count", len(tokens)))
	return tokens, nil
}

// MapRecords validates flat relationship records and converts them to
// Relationships. A record with an unrecognized kind tag fails the whole
// batch with ErrUnknownRelationship.
func (m *Mapper) MapRecords(records []Record) ([]Relationship, error) {
	rels := make([]Relationship, 0, len(records))
	for i, rec := range records {
		kind := Kind(rec.Type)
		if !kind.Valid() {
			return nil, fmt.Errorf("record %d has kind %q: %w", i, rec.Type, ErrUnknownRelationship)
		}
		rel := Relationship{
			Kind:        kind,
			Source:      rec.Source,
			Target:      rec.Target,
			Tokens:      rec.Tokens,
			Condition:   rec.Condition,
			TrueBranch:  rec.TrueBranch,
			FalseBranch: rec.FalseBranch,
			Token:       rec.Token,
			Count:       rec.Count,
		}
		if rel.Kind == KindRepetition && rel.Count < 1 {
			rel.Count = 1
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// MapCommands converts a command hierarchy into a full Mapping: one token
// per command plus the relationships implied by the nesting.
func (m *Mapper) MapCommands(roots []*Command) (Mapping, error) {
	var mapping Mapping

	ids := make(map[*Command]string)
	var mint func(c *Command) error
	mint = func(c *Command) error {
		category := commandCategories[c.Name]
		if category == "" {
			category = token.CategoryDirective
		}
		value := m.commandValue(c, category)
		id, err := m.gen.GenerateID(value, category)
		if err != nil {
			return fmt.Errorf("failed to map command %q: %w", c.Name, err)
		}
		ids[c] = id
		mapping.Tokens = append(mapping.Tokens, Token{
			ID:       id,
			Category: category,
			Value:    token.Normalize(value),
			Source:   c.Name,
		})
		for _, child := range c.Children {
			if err := mint(child); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range roots {
		if err := mint(root); err != nil {
			return Mapping{}, err
		}
	}

	for _, root := range roots {
		m.collectRelationships(root, ids, &mapping.Relationships)
	}
	return mapping, nil
}

// commandValue extracts the parameter that names the token for a command.
// Falls back to the ID parameter, then the command name itself.
func (m *Mapper) commandValue(c *Command, category string) string {
	key := categoryKeyParams[category]
	if key == "" {
		key = "ID"
	}
	if v := c.Parameters[key]; v != "" {
		return v
	}
	if v := c.Parameters["ID"]; v != "" {
		return v
	}
	return c.Name
}

// collectRelationships applies the hierarchy conversion rules:
//
//   - CONDITIONAL: children become condition / true branch / optional false branch
//   - PARALLEL: one parallel relationship over all child tokens
//   - REPEAT: one repetition of its single child, count from the count parameter
//   - anything else with several children: a chain of binary sequences over
//     consecutive child pairs
//
// Rules recurse into every child, so nested structures contribute their own
// relationships.
func (m *Mapper) collectRelationships(c *Command, ids map[*Command]string, out *[]Relationship) {
	children := c.Children
	if len(children) > 0 {
		childIDs := make([]string, len(children))
		for i, child := range children {
			childIDs[i] = ids[child]
		}

		switch c.Name {
		case "CONDITIONAL":
			rel := Relationship{
				Kind:       KindConditional,
				Condition:  childIDs[0],
				TrueBranch: pick(childIDs, 1),
			}
			if len(childIDs) > 2 {
				rel.FalseBranch = childIDs[2]
			}
			*out = append(*out, rel)
		case "PARALLEL":
			*out = append(*out, Relationship{Kind: KindParallel, Tokens: childIDs})
		case "REPEAT":
			count := 1
			if n, err := atoiParam(c.Parameters["count"]); err == nil {
				count = n
			}
			*out = append(*out, Relationship{Kind: KindRepetition, Token: childIDs[0], Count: count})
		default:
			for i := 0; i+1 < len(childIDs); i++ {
				*out = append(*out, Sequence(childIDs[i], childIDs[i+1]))
			}
		}
	}

	for _, child := range children {
		m.collectRelationships(child, ids, out)
	}
}

func pick(ids []string, i int) string {
	if i < len(ids) {
		return ids[i]
	}
	return ""
}

func atoiParam(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("count must be positive, got %d", n)
	}
	return n, nil
}
