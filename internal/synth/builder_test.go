package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pailang/internal/semantic"
)

func build(t *testing.T, rels ...semantic.Relationship) string {
	t.Helper()
	tree, err := NewBuilder(nil).Build(rels)
	require.NoError(t, err)
	return Synthesize(tree)
}

func TestBuild_SingleSequence(t *testing.T) {
	got := build(t, semantic.Sequence("T1", "T2"))
	assert.Equal(t, "T1>T2", got)
}

func TestBuild_ChainedSequences(t *testing.T) {
	// The second relationship attaches by finding the T2 leaf.
	got := build(t,
		semantic.Sequence("T1", "T2"),
		semantic.Sequence("T2", "T3"),
	)
	assert.Equal(t, "T1>T2>T3", got)
}

func TestBuild_SequenceAttachesAtTarget(t *testing.T) {
	// T3>T1 grafts in front of the existing T1 leaf.
	got := build(t,
		semantic.Sequence("T1", "T2"),
		semantic.Sequence("T3", "T1"),
	)
	assert.Equal(t, "T3>T1>T2", got)
}

func TestBuild_DuplicateSequenceIsNoOp(t *testing.T) {
	got := build(t,
		semantic.Sequence("T1", "T2"),
		semantic.Sequence("T1", "T2"),
	)
	assert.Equal(t, "T1>T2", got)
}

func TestBuild_Parallel(t *testing.T) {
	got := build(t, semantic.Parallel("T1", "T2", "T3"))
	assert.Equal(t, "T1&T2&T3", got)
}

func TestBuild_ParallelSingleTokenCollapsesToLeaf(t *testing.T) {
	got := build(t, semantic.Parallel("T1"))
	assert.Equal(t, "T1", got)
}

func TestBuild_ParallelEmptyIsNoOp(t *testing.T) {
	got := build(t,
		semantic.Sequence("T1", "T2"),
		semantic.Parallel(),
	)
	assert.Equal(t, "T1>T2", got)
}

func TestBuild_Conditional(t *testing.T) {
	got := build(t, semantic.Conditional("C1", "T1", "T2"))
	assert.Equal(t, "C1?T1:T2", got)
}

func TestBuild_ConditionalWithoutFalseBranch(t *testing.T) {
	got := build(t, semantic.Conditional("C1", "T1", ""))
	assert.Equal(t, "C1?T1", got)
}

func TestBuild_Repetition(t *testing.T) {
	got := build(t, semantic.Repetition("T1", 3))
	assert.Equal(t, "**3T1", got)
}

func TestBuild_RepetitionWrapsExistingLeaf(t *testing.T) {
	// Repetition ranks above sequence, so it is processed first; the
	// sequence then grafts onto the repeated leaf.
	got := build(t,
		semantic.Sequence("T1", "T2"),
		semantic.Repetition("T2", 3),
	)
	assert.Equal(t, "**3T1>T2", got)
}

func TestBuild_PrecedenceOrdersRelationships(t *testing.T) {
	// Input order is conditional first, but parallel (rank 2) must be
	// threaded before sequence (rank 1) before conditional (rank 0).
	got := build(t,
		semantic.Conditional("C1", "T3", ""),
		semantic.Sequence("T2", "T3"),
		semantic.Parallel("T1", "T2"),
	)
	// Parallel builds T1&T2; the sequence grafts onto the T2 leaf; the
	// conditional never searches, so it merges onto the frontier.
	assert.Equal(t, "T1&T2>T3>C1?T3", got)
}

func TestBuild_MergeSequenceRootTakesFragmentAtRightmostLeaf(t *testing.T) {
	got := build(t,
		semantic.Sequence("T1", "T2"),
		semantic.Conditional("C1", "A1", "A2"),
	)
	assert.Equal(t, "T1>T2>C1?A1:A2", got)
}

func TestBuild_MergeSequenceFragmentTakesTreeAtLeftmostLeaf(t *testing.T) {
	// Parallel (rank 2) runs first and leaves a single leaf X as the tree;
	// the sequence fragment then absorbs X in front of its leftmost leaf.
	got := build(t,
		semantic.Sequence("T1", "T2"),
		semantic.Parallel("X"),
	)
	assert.Equal(t, "X>T1>T2", got)
}

func TestBuild_MergeWrapsUnrelatedTrees(t *testing.T) {
	got := build(t,
		semantic.Parallel("P1", "P2"),
		semantic.Conditional("C1", "T1", "T2"),
	)
	assert.Equal(t, "P1&P2>C1?T1:T2", got)
}

func TestBuild_CyclicRelationshipsOverwriteLastWriteWins(t *testing.T) {
	// source->target plus target->source is not rejected; the later
	// relationship overwrites by grafting onto the found leaf.
	got := build(t,
		semantic.Sequence("T1", "T2"),
		semantic.Sequence("T2", "T1"),
	)
	assert.Equal(t, "T1>T2>T1", got)
}

func TestBuild_UnknownKindRejected(t *testing.T) {
	_, err := NewBuilder(nil).Build([]semantic.Relationship{
		{Kind: "teleport", Source: "T1", Target: "T2"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, semantic.ErrUnknownRelationship)
}

func TestBuild_Empty(t *testing.T) {
	tree, err := NewBuilder(nil).Build(nil)
	require.NoError(t, err)
	assert.True(t, tree.Empty())
	assert.Equal(t, "", Synthesize(tree))
}

func TestBuild_RepeatedConditionalChain(t *testing.T) {
	// Two conditionals merge in input order along the sequence frontier.
	got := build(t,
		semantic.Conditional("C1", "T1", ""),
		semantic.Conditional("C2", "T2", "T3"),
	)
	assert.Equal(t, "C1?T1>C2?T2:T3", got)
}

func TestSynthesize_NilTree(t *testing.T) {
	assert.Equal(t, "", Synthesize(nil))
}
