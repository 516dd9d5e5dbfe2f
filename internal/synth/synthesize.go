package synth

import (
	"fmt"
	"strings"
)

// Synthesize linearizes a tree into its symbolic string. Grouping is carried
// entirely by tree shape: no parentheses are ever emitted, so a correctly
// nested tree is the only source of correct output.
//
//	Leaf                 -> identifier
//	Sequence(l, r)       -> l>r
//	Parallel(l, r)       -> l&r
//	Conditional(c, t)    -> c?t
//	Conditional(c, t, f) -> c?t:f
//	Repetition(n, e)     -> **{n}{e}  (count literal directly prefixes e)
func Synthesize(t *Tree) string {
	if t.Empty() {
		return ""
	}
	var sb strings.Builder
	t.writeNode(&sb, t.root)
	return sb.String()
}

func (t *Tree) writeNode(sb *strings.Builder, id NodeID) {
	if id == None {
		return
	}
	n := t.arena.at(id)
	switch n.Kind {
	case KindLeaf:
		sb.WriteString(n.Value)
	case KindSequence:
		t.writeNode(sb, n.Left)
		sb.WriteByte('>')
		t.writeNode(sb, n.Right)
	case KindParallel:
		t.writeNode(sb, n.Left)
		sb.WriteByte('&')
		t.writeNode(sb, n.Right)
	case KindConditional:
		t.writeNode(sb, n.Condition)
		sb.WriteByte('?')
		t.writeNode(sb, n.True)
		if n.False != None {
			sb.WriteByte(':')
			t.writeNode(sb, n.False)
		}
	case KindRepetition:
		fmt.Fprintf(sb, "**%d", n.Count)
		t.writeNode(sb, n.Expr)
	}
}

// String implements fmt.Stringer for debugging and tests.
func (t *Tree) String() string {
	return Synthesize(t)
}
