package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pailang/internal/registry"
)

// Sentinel errors returned by the generator.
var (
	// ErrNotFound is returned by Resolve for malformed or unbound identifiers.
	ErrNotFound = errors.New("token not found")

	// ErrCategoryExhausted is returned when no free suffix can be found for a
	// category within the bounded number of collision-retry attempts.
	ErrCategoryExhausted = errors.New("token category exhausted")
)

// maxCollisionRetries bounds the suffix search. The perturbation walk covers
// the whole 1..99 window once before giving up, so a category genuinely out
// of free low suffixes fails fast instead of spinning.
const maxCollisionRetries = 99

// Generator mints stable token identifiers backed by a registry. Generation
// is idempotent: values that normalize identically within a category always
// receive the same identifier.
type Generator struct {
	reg    *registry.Registry
	logger *zap.Logger
}

// NewGenerator wraps a registry. A nil logger is replaced with a no-op.
func NewGenerator(reg *registry.Registry, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{reg: reg, logger: logger}
}

// GenerateID returns the identifier for (value, category), minting and
// registering a new suffix on first sight. The returned identifier carries
// the category prefix.
//
// A registry persistence failure does not fail generation: the identifier is
// valid in memory and the persist error is logged by the registry.
func (g *Generator) GenerateID(value, category string) (string, error) {
	normValue := Normalize(value)
	normCategory := strings.ToLower(category)
	prefix := Prefix(normCategory)
	if !KnownCategory(normCategory) {
		normCategory = CategoryDirective
	}

	if suffix, ok := g.reg.Lookup(normCategory, normValue); ok {
		return prefix + suffix, nil
	}

	suffix, err := g.mint(normValue, normCategory)
	if err != nil {
		return "", err
	}

	used, _ := strconv.Atoi(suffix)
	g.reg.Advance(normCategory, used)
	if err := g.reg.Bind(normCategory, normValue, suffix); err != nil {
		// Persistence failed; the in-memory binding stands (§ error contract).
		g.logger.Debug("identifier minted without persistence",
			zap.String("id", prefix+suffix))
	}

	g.logger.Debug("minted token identifier",
		zap.String("category", normCategory),
		zap.String("value", normValue),
		zap.String("id", prefix+suffix))
	return prefix + suffix, nil
}

// RegisterID explicitly binds an identifier to (value, category). The suffix
// may be supplied with or without its category prefix. If the numeric suffix
// exceeds the category counter, the counter advances past it so future
// minted identifiers never collide with manual registrations.
func (g *Generator) RegisterID(value, category, id string) error {
	normValue := Normalize(value)
	normCategory := strings.ToLower(category)
	if !KnownCategory(normCategory) {
		normCategory = CategoryDirective
	}

	suffix := id
	if len(suffix) > 1 && isPrefixLetter(suffix[0]) {
		suffix = suffix[1:]
	}

	if n, err := strconv.Atoi(suffix); err == nil {
		g.reg.Advance(normCategory, n)
	}
	return g.reg.Bind(normCategory, normValue, suffix)
}

// Resolve maps an identifier back to its (normalized value, category).
// Identifiers shorter than two characters, with an unknown prefix, or with
// no registry binding resolve to ErrNotFound; Resolve never panics.
//
// When categories share a prefix the first match in fixed table order wins,
// so an identifier bound under both handler and security resolves to handler.
func (g *Generator) Resolve(id string) (value, category string, err error) {
	if len(id) < 2 {
		return "", "", fmt.Errorf("identifier %q too short: %w", id, ErrNotFound)
	}

	prefix := string(id[0])
	suffix := id[1:]

	candidates := categoriesForPrefix(prefix)
	if len(candidates) == 0 {
		return "", "", fmt.Errorf("unknown category prefix %q: %w", prefix, ErrNotFound)
	}

	for _, cat := range candidates {
		for v, s := range g.reg.Values(cat) {
			if s == suffix {
				return v, cat, nil
			}
		}
	}
	return "", "", fmt.Errorf("identifier %q not bound: %w", id, ErrNotFound)
}

// mint finds a free numeric suffix for (value, category).
//
// The primary candidate is the category counter, which preserves suffix
// monotonicity for non-colliding values. On collision with a manually
// registered suffix the search perturbs the candidate with a hash of the
// value, walks the 1..99 window, and finally salts with a UUID before
// reporting the category exhausted.
func (g *Generator) mint(value, category string) (string, error) {
	candidate := g.reg.Counter(category)
	if value == "" {
		// Empty values take the raw counter without hashing.
		return format(candidate), nil
	}

	seed := hashSeed(value)
	for attempt := 0; attempt < maxCollisionRetries; attempt++ {
		suffix := format(candidate)
		owner, taken := g.reg.SuffixOwner(category, suffix)
		if !taken || owner == value {
			return suffix, nil
		}

		switch attempt {
		case 0:
			// First collision: jump to a value-derived slot in the 1..99 window.
			candidate = int((seed+uint32(candidate))%99) + 1
		case maxCollisionRetries - 2:
			// Last resort before giving up: a random salt.
			candidate = uuidSalt()
		default:
			candidate = (candidate % 99) + 1
		}
	}

	return "", fmt.Errorf("no free suffix for category %q after %d attempts: %w",
		category, maxCollisionRetries, ErrCategoryExhausted)
}

// hashSeed derives a stable perturbation seed from the first 8 hex digits of
// the value's SHA-256.
func hashSeed(value string) uint32 {
	sum := sha256.Sum256([]byte(value))
	hexDigits := hex.EncodeToString(sum[:])[:8]
	n, _ := strconv.ParseUint(hexDigits, 16, 64)
	return uint32(n)
}

// uuidSalt derives a 1..99 suffix candidate from a fresh UUID.
func uuidSalt() int {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	n, err := strconv.ParseUint(raw[len(raw)-2:], 16, 16)
	if err != nil {
		return 1
	}
	return int(n)%99 + 1
}

// format zero-pads a suffix to at least two digits.
func format(n int) string {
	return fmt.Sprintf("%02d", n)
}
