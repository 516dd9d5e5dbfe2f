// Package token mints and resolves pAI-Lang token identifiers.
//
// An identifier is a single-letter category prefix followed by a numeric
// suffix zero-padded to at least two digits (T01, C42, P103). Within a
// category a suffix is bound to exactly one canonical value; the binding
// lives in the registry package.
package token

// Token categories. These are fixed namespaces partitioning the identifier
// space; unknown category names fall back to CategoryDirective.
const (
	CategorySystem    = "system"
	CategoryContext   = "context"
	CategoryTask      = "task"
	CategoryCondition = "condition"
	CategoryAction    = "action"
	CategoryResource  = "resource"
	CategoryQuery     = "query"
	CategoryBatch     = "batch"
	CategoryDirective = "directive"
	CategoryMemory    = "memory"
	CategoryNetwork   = "network"
	CategoryHandler   = "handler"
	CategorySecurity  = "security"
)

// categoryOrder fixes the iteration order for prefix resolution. When two
// categories share a prefix (handler and security both use H), Resolve
// searches them in this order.
var categoryOrder = []string{
	CategorySystem,
	CategoryContext,
	CategoryTask,
	CategoryCondition,
	CategoryAction,
	CategoryResource,
	CategoryQuery,
	CategoryBatch,
	CategoryDirective,
	CategoryMemory,
	CategoryNetwork,
	CategoryHandler,
	CategorySecurity,
}

// categoryPrefixes maps each category to its identifier prefix.
// handler and security deliberately collide on H: the upstream token table
// shares the prefix, so identifiers are not uniquely reversible to category.
// Resolve disambiguates by registry contents, not by prefix.
var categoryPrefixes = map[string]string{
	CategorySystem:    "S",
	CategoryContext:   "C",
	CategoryTask:      "T",
	CategoryCondition: "L",
	CategoryAction:    "P",
	CategoryResource:  "R",
	CategoryQuery:     "Q",
	CategoryBatch:     "B",
	CategoryDirective: "D",
	CategoryMemory:    "M",
	CategoryNetwork:   "N",
	CategoryHandler:   "H",
	CategorySecurity:  "H",
}

// Prefix returns the identifier prefix for a category. Unknown categories
// map to the directive prefix.
func Prefix(category string) string {
	if p, ok := categoryPrefixes[category]; ok {
		return p
	}
	return categoryPrefixes[CategoryDirective]
}

// KnownCategory reports whether the name is one of the fixed categories.
func KnownCategory(category string) bool {
	_, ok := categoryPrefixes[category]
	return ok
}

// Categories returns the fixed category names in table order.
func Categories() []string {
	out := make([]string, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// categoriesForPrefix returns all categories using the given prefix, in
// table order.
func categoriesForPrefix(prefix string) []string {
	var out []string
	for _, c := range categoryOrder {
		if categoryPrefixes[c] == prefix {
			out = append(out, c)
		}
	}
	return out
}

func isPrefixLetter(ch byte) bool {
	for _, p := range categoryPrefixes {
		if p[0] == ch {
			return true
		}
	}
	return false
}
