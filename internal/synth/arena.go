// Package synth is the expression-tree synthesis engine: it merges an
// unordered bag of typed relationships into a single expression tree under
// the fixed operator-precedence policy, then linearizes the tree into the
// final symbolic string.
//
// Trees live in an arena: every node is owned by one slice and addressed by
// index. Replacement works on indices, so two leaves carrying the same value
// are still distinct nodes and in-place substitution has no aliasing risk.
package synth

// NodeKind tags an expression node variant.
type NodeKind int

const (
	KindLeaf NodeKind = iota
	KindSequence
	KindParallel
	KindConditional
	KindRepetition
)

// NodeID addresses a node within its arena. The zero tree is addressed by None.
type NodeID int

// None marks an absent node reference (empty tree, missing false branch).
const None NodeID = -1

// Node is one expression-tree node. Link fields hold arena indices; None
// means the link is absent. Only the fields relevant to Kind are meaningful.
type Node struct {
	Kind  NodeKind
	Value string // KindLeaf: token identifier
	Count int    // KindRepetition: positive repeat count

	Left      NodeID // sequence, parallel
	Right     NodeID // sequence, parallel
	Condition NodeID // conditional
	True      NodeID // conditional
	False     NodeID // conditional, optional
	Expr      NodeID // repetition
}

// arena owns every node of one tree under construction.
type arena struct {
	nodes []Node
}

func newArena() *arena {
	return &arena{}
}

func (a *arena) alloc(n Node) NodeID {
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1)
}

func (a *arena) at(id NodeID) *Node {
	return &a.nodes[id]
}

func (a *arena) leaf(value string) NodeID {
	return a.alloc(Node{Kind: KindLeaf, Value: value,
		Left: None, Right: None, Condition: None, True: None, False: None, Expr: None})
}

func (a *arena) sequence(left, right NodeID) NodeID {
	return a.alloc(Node{Kind: KindSequence, Left: left, Right: right,
		Condition: None, True: None, False: None, Expr: None})
}

func (a *arena) parallel(left, right NodeID) NodeID {
	return a.alloc(Node{Kind: KindParallel, Left: left, Right: right,
		Condition: None, True: None, False: None, Expr: None})
}

func (a *arena) conditional(condition, trueBranch, falseBranch NodeID) NodeID {
	return a.alloc(Node{Kind: KindConditional, Condition: condition,
		True: trueBranch, False: falseBranch, Left: None, Right: None, Expr: None})
}

func (a *arena) repetition(count int, expr NodeID) NodeID {
	return a.alloc(Node{Kind: KindRepetition, Count: count, Expr: expr,
		Left: None, Right: None, Condition: None, True: None, False: None})
}

// findLeaf walks the tree depth-first across every structural field and
// returns the first leaf whose value matches. Absence is a normal outcome.
func (a *arena) findLeaf(root NodeID, value string) NodeID {
	if root == None {
		return None
	}
	n := a.at(root)
	if n.Kind == KindLeaf {
		if n.Value == value {
			return root
		}
		return None
	}
	for _, child := range []NodeID{n.Left, n.Right, n.Condition, n.True, n.False, n.Expr} {
		if child == None {
			continue
		}
		if found := a.findLeaf(child, value); found != None {
			return found
		}
	}
	return None
}

// replace substitutes every occurrence of target reachable from root with
// repl, returning the (possibly new) root. It does not descend into the
// replacement, so a replacement that contains the target as a child is safe.
func (a *arena) replace(root, target, repl NodeID) NodeID {
	if root == None {
		return repl
	}
	if root == target {
		return repl
	}
	a.replaceChildren(root, target, repl)
	return root
}

func (a *arena) replaceChildren(id, target, repl NodeID) {
	n := a.at(id)
	for _, link := range []*NodeID{&n.Left, &n.Right, &n.Condition, &n.True, &n.False, &n.Expr} {
		if *link == None {
			continue
		}
		if *link == target {
			*link = repl
			continue
		}
		a.replaceChildren(*link, target, repl)
	}
}

// leftmost returns the leaf on the left frontier: follow left, then
// condition, then expression links until a leaf is reached.
func (a *arena) leftmost(root NodeID) NodeID {
	n := a.at(root)
	if n.Kind == KindLeaf {
		return root
	}
	switch {
	case n.Left != None:
		return a.leftmost(n.Left)
	case n.Condition != None:
		return a.leftmost(n.Condition)
	case n.Expr != None:
		return a.leftmost(n.Expr)
	}
	return root
}

// rightmost returns the leaf on the right frontier: follow right, then
// falseBranch, then trueBranch, then expression links. The trueBranch hop
// covers conditionals with no false branch.
func (a *arena) rightmost(root NodeID) NodeID {
	n := a.at(root)
	if n.Kind == KindLeaf {
		return root
	}
	switch {
	case n.Right != None:
		return a.rightmost(n.Right)
	case n.False != None:
		return a.rightmost(n.False)
	case n.True != None:
		return a.rightmost(n.True)
	case n.Expr != None:
		return a.rightmost(n.Expr)
	}
	return root
}
