// Package semantic turns categorized entities and command hierarchies into
// the canonical {tokens, relationships} structure the synthesis engine
// consumes. It owns the fixed category-to-operator associations; it performs
// no parsing of surface text.
package semantic

import "errors"

// ErrUnknownRelationship is returned for relationship records whose kind tag
// is not one of the four recognized kinds. Upstream used to drop these
// silently; rejecting loudly is deliberate.
var ErrUnknownRelationship = errors.New("unrecognized relationship kind")

// Kind tags a relationship variant.
type Kind string

const (
	KindSequence    Kind = "sequence"
	KindParallel    Kind = "parallel"
	KindConditional Kind = "conditional"
	KindRepetition  Kind = "repetition"
)

// Operator returns the symbolic operator associated with the kind.
func (k Kind) Operator() string {
	switch k {
	case KindSequence:
		return ">"
	case KindParallel:
		return "&"
	case KindConditional:
		return "?:"
	case KindRepetition:
		return "**"
	}
	return ">"
}

// Valid reports whether k is one of the recognized relationship kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSequence, KindParallel, KindConditional, KindRepetition:
		return true
	}
	return false
}

// Relationship is a typed semantic link between token values. Which fields
// are meaningful depends on Kind:
//
//	KindSequence:    Source, Target
//	KindParallel:    Tokens (ordered, length >= 1)
//	KindConditional: Condition, TrueBranch, FalseBranch (optional)
//	KindRepetition:  Token, Count (positive)
type Relationship struct {
	Kind        Kind
	Source      string
	Target      string
	Tokens      []string
	Condition   string
	TrueBranch  string
	FalseBranch string
	Token       string
	Count       int
}

// Sequence builds a sequence relationship.
func Sequence(source, target string) Relationship {
	return Relationship{Kind: KindSequence, Source: source, Target: target}
}

// Parallel builds a parallel relationship over an ordered token list.
func Parallel(tokens ...string) Relationship {
	return Relationship{Kind: KindParallel, Tokens: tokens}
}

// Conditional builds a conditional relationship; pass "" for no false branch.
func Conditional(condition, trueBranch, falseBranch string) Relationship {
	return Relationship{
		Kind:        KindConditional,
		Condition:   condition,
		TrueBranch:  trueBranch,
		FalseBranch: falseBranch,
	}
}

// Repetition builds a repetition relationship.
func Repetition(token string, count int) Relationship {
	return Relationship{Kind: KindRepetition, Token: token, Count: count}
}

// Token is one mapped semantic concept: the minted identifier plus the
// category and canonical value it stands for. Source preserves the surface
// form the token was mapped from.
type Token struct {
	ID       string
	Category string
	Value    string
	Source   string
}

// Mapping is the canonical structure handed to the synthesis engine.
type Mapping struct {
	Tokens        []Token
	Relationships []Relationship
}
