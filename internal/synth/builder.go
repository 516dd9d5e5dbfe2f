package synth

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"pailang/internal/semantic"
)

// Operator precedence ranks; higher binds tighter and is applied first.
// Only parallel, sequence, conditional and repetition are synthesized by this
// engine; the remaining ranks are accepted as inputs from the broader grammar
// and exported so collaborator stages agree on one table.
const (
	PrecContextActivation = 7
	PrecRepetition        = 6
	PrecPiping            = 5
	PrecAggregation       = 4
	PrecAssignment        = 3
	PrecParallel          = 2
	PrecSequence          = 1
	PrecConditional       = 0
)

// Precedence returns the rank for a relationship kind.
func Precedence(k semantic.Kind) int {
	switch k {
	case semantic.KindRepetition:
		return PrecRepetition
	case semantic.KindParallel:
		return PrecParallel
	case semantic.KindSequence:
		return PrecSequence
	case semantic.KindConditional:
		return PrecConditional
	}
	return PrecConditional
}

// Tree is a fully built expression tree, ready for synthesis. It is built
// fresh per compilation and consumed once; it is never persisted.
type Tree struct {
	arena *arena
	root  NodeID
}

// Empty reports whether the tree has no nodes.
func (t *Tree) Empty() bool {
	return t == nil || t.root == None
}

// Builder merges relationships into a single expression tree. One builder
// builds one tree; construct a fresh builder per compilation.
type Builder struct {
	arena  *arena
	logger *zap.Logger
}

// NewBuilder creates an empty builder.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{arena: newArena(), logger: logger}
}

// Build sorts the relationships by precedence rank (descending, stable) and
// threads each one into the running tree. Relationships with an unrecognized
// kind abort the build with semantic.ErrUnknownRelationship.
//
// Duplicate or cyclic relationships are not detected: when two relationships
// target the same leaf, the later one in sort order wins by overwriting the
// earlier attachment.
func (b *Builder) Build(relationships []semantic.Relationship) (*Tree, error) {
	for i, rel := range relationships {
		if !rel.Kind.Valid() {
			return nil, fmt.Errorf("relationship %d has kind %q: %w",
				i, rel.Kind, semantic.ErrUnknownRelationship)
		}
	}

	sorted := make([]semantic.Relationship, len(relationships))
	copy(sorted, relationships)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Precedence(sorted[i].Kind) > Precedence(sorted[j].Kind)
	})

	root := None
	for _, rel := range sorted {
		switch rel.Kind {
		case semantic.KindSequence:
			root = b.addSequence(root, rel)
		case semantic.KindParallel:
			root = b.addParallel(root, rel)
		case semantic.KindConditional:
			root = b.addConditional(root, rel)
		case semantic.KindRepetition:
			root = b.addRepetition(root, rel)
		}
	}

	b.logger.Debug("expression tree built",
		zap.Int("relationships", len(relationships)),
		zap.Int("nodes", len(b.arena.nodes)))
	return &Tree{arena: b.arena, root: root}, nil
}

// addSequence threads source>target into the tree. The source leaf is
// preferred as the graft point; failing that the target leaf; failing both
// the fragment merges onto the tree frontier.
func (b *Builder) addSequence(root NodeID, rel semantic.Relationship) NodeID {
	a := b.arena
	if root == None {
		return a.sequence(a.leaf(rel.Source), a.leaf(rel.Target))
	}

	// Already exactly this two-leaf sequence: nothing to add.
	if n := a.at(root); n.Kind == KindSequence {
		left, right := a.at(n.Left), a.at(n.Right)
		if left.Kind == KindLeaf && right.Kind == KindLeaf &&
			left.Value == rel.Source && right.Value == rel.Target {
			return root
		}
	}

	if found := a.findLeaf(root, rel.Source); found != None {
		seq := a.sequence(found, a.leaf(rel.Target))
		return a.replace(root, found, seq)
	}
	if found := a.findLeaf(root, rel.Target); found != None {
		seq := a.sequence(a.leaf(rel.Source), found)
		return a.replace(root, found, seq)
	}

	fragment := a.sequence(a.leaf(rel.Source), a.leaf(rel.Target))
	return b.merge(root, fragment)
}

// addParallel builds a left-deep chain over the token list and merges it.
// A single-element list collapses to a bare leaf; an empty list is a no-op.
func (b *Builder) addParallel(root NodeID, rel semantic.Relationship) NodeID {
	a := b.arena
	if len(rel.Tokens) == 0 {
		return root
	}

	chain := a.leaf(rel.Tokens[0])
	for _, t := range rel.Tokens[1:] {
		chain = a.parallel(chain, a.leaf(t))
	}
	return b.merge(root, chain)
}

// addConditional builds one conditional node and merges it.
func (b *Builder) addConditional(root NodeID, rel semantic.Relationship) NodeID {
	a := b.arena
	falseBranch := None
	if rel.FalseBranch != "" {
		falseBranch = a.leaf(rel.FalseBranch)
	}
	node := a.conditional(a.leaf(rel.Condition), a.leaf(rel.TrueBranch), falseBranch)
	return b.merge(root, node)
}

// addRepetition wraps an existing leaf in place when the repeated token is
// already in the tree; otherwise a standalone fragment merges in.
func (b *Builder) addRepetition(root NodeID, rel semantic.Relationship) NodeID {
	a := b.arena
	if found := a.findLeaf(root, rel.Token); found != None {
		rep := a.repetition(rel.Count, found)
		return a.replace(root, found, rep)
	}
	fragment := a.repetition(rel.Count, a.leaf(rel.Token))
	return b.merge(root, fragment)
}

// merge threads fragment b2 onto tree b1, preserving left-to-right reading
// order: a sequence-rooted b1 takes the fragment at its rightmost leaf; a
// sequence-rooted b2 takes the tree at its leftmost leaf; otherwise the two
// are wrapped in a new sequence.
func (b *Builder) merge(t1, t2 NodeID) NodeID {
	a := b.arena
	if t1 == None {
		return t2
	}
	if t2 == None {
		return t1
	}

	if a.at(t1).Kind == KindSequence {
		right := a.rightmost(t1)
		seq := a.sequence(right, t2)
		return a.replace(t1, right, seq)
	}
	if a.at(t2).Kind == KindSequence {
		left := a.leftmost(t2)
		seq := a.sequence(t1, left)
		return a.replace(t2, left, seq)
	}
	return a.sequence(t1, t2)
}
