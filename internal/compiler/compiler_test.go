package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pailang/internal/registry"
	"pailang/internal/semantic"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	reg, err := registry.New(registry.NewMemStore(), nil)
	require.NoError(t, err)
	return New(reg, nil)
}

func TestCompile_NoRelationshipsEmitsFirstToken(t *testing.T) {
	c := newTestCompiler(t)

	out, err := c.Compile(semantic.Mapping{
		Tokens: []semantic.Token{{ID: "T9"}, {ID: "T2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "T9", out)
}

func TestCompile_EmptyMapping(t *testing.T) {
	c := newTestCompiler(t)

	out, err := c.Compile(semantic.Mapping{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCompile_Relationships(t *testing.T) {
	c := newTestCompiler(t)

	out, err := c.Compile(semantic.Mapping{
		Relationships: []semantic.Relationship{
			semantic.Sequence("T1", "T2"),
			semantic.Conditional("C1", "T3", ""),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "T1>T2>C1?T3", out)
}

func TestCompileRecords_EndToEnd(t *testing.T) {
	c := newTestCompiler(t)

	out, err := c.CompileRecords(
		[]semantic.Entity{
			{Type: "task_name", Value: "collect data"},
			{Type: "task_name", Value: "process data"},
			{Type: "condition", Value: "data ready"},
		},
		[]semantic.Record{
			{Type: "sequence", Source: "T01", Target: "T02"},
			{Type: "conditional", Condition: "L01", TrueBranch: "T01"},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "T01>T02>L01?T01", out)
}

func TestCompileRecords_UnknownKindPropagates(t *testing.T) {
	c := newTestCompiler(t)

	_, err := c.CompileRecords(
		[]semantic.Entity{{Type: "task_name", Value: "collect"}},
		[]semantic.Record{{Type: "interleave", Tokens: []string{"T01", "T02"}}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, semantic.ErrUnknownRelationship)
}

func TestCompileCommands_EndToEnd(t *testing.T) {
	c := newTestCompiler(t)

	out, err := c.CompileCommands([]*semantic.Command{{
		Name:       "BATCH_OPERATION",
		Parameters: map[string]string{"BATCH": "nightly"},
		Children: []*semantic.Command{
			{Name: "EXECUTE_TASK", Parameters: map[string]string{"TASK": "collect"}},
			{Name: "EXECUTE_TASK", Parameters: map[string]string{"TASK": "process"}},
			{Name: "EXECUTE_TASK", Parameters: map[string]string{"TASK": "publish"}},
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, "T01>T02>T03", out)
}

func TestCompileCommands_SingleCommandFallsBackToItsToken(t *testing.T) {
	c := newTestCompiler(t)

	out, err := c.CompileCommands([]*semantic.Command{{
		Name:       "EXECUTE_TASK",
		Parameters: map[string]string{"TASK": "collect"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "T01", out)
}

func TestCompile_RepeatedCallsShareRegistry(t *testing.T) {
	c := newTestCompiler(t)

	first, err := c.CompileRecords(
		[]semantic.Entity{{Type: "task_name", Value: "collect"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "T01", first)

	// A second compilation mints a fresh suffix for a new value but reuses
	// the identifier for a repeated one.
	second, err := c.CompileRecords(
		[]semantic.Entity{
			{Type: "task_name", Value: "process"},
			{Type: "task_name", Value: "collect"},
		}, nil)
	require.NoError(t, err)
	assert.Equal(t, "T02", second)

	id, err := c.Generator().GenerateID("collect", "task")
	require.NoError(t, err)
	assert.Equal(t, "T01", id)
}
