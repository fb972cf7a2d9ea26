// Package statevector implements the sparse per-participant counter used by
// the adOPTed algorithm to order and compare requests across participants.
package statevector

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrParse is returned by FromString/FromStringDiff when the wire grammar
// (uid:count(;uid:count)*) is violated.
var ErrParse = errors.New("statevector: parse error")

// ErrMonotonicityViolation is returned by Set when the new value would
// decrease a participant's counter.
var ErrMonotonicityViolation = errors.New("statevector: monotonicity violation")

// ErrKeyRemoval is returned by ToStringDiff when the base vector carries a
// key that the target vector lacks. The wire grammar has no removal marker
// (spec open question, resolved as option (a): disallow and document), so
// such a diff cannot be represented.
var ErrKeyRemoval = errors.New("statevector: diff cannot represent key removal")

// StateVector is a finite map from participant id to a non-negative
// counter. Missing keys read as zero. The zero value is an empty,
// usable vector.
type StateVector struct {
	counts map[uint64]uint64
}

// New returns an empty state vector.
func New() *StateVector {
	return &StateVector{counts: make(map[uint64]uint64)}
}

// Get returns the counter for participant u, or 0 if absent.
func (v *StateVector) Get(u uint64) uint64 {
	if v == nil || v.counts == nil {
		return 0
	}
	return v.counts[u]
}

// Set assigns the counter for participant u to n. It fails if n is less
// than the current value, since counters are monotonic non-decreasing and
// no key is ever removed.
func (v *StateVector) Set(u uint64, n uint64) error {
	if v.counts == nil {
		v.counts = make(map[uint64]uint64)
	}
	if cur, ok := v.counts[u]; ok && n < cur {
		return fmt.Errorf("%w: user %d from %d to %d", ErrMonotonicityViolation, u, cur, n)
	}
	v.counts[u] = n
	return nil
}

// Add increments participant u's counter by k, returning the new value.
func (v *StateVector) Add(u uint64, k uint64) uint64 {
	if v.counts == nil {
		v.counts = make(map[uint64]uint64)
	}
	v.counts[u] += k
	return v.counts[u]
}

// Copy returns a deep copy of v.
func (v *StateVector) Copy() *StateVector {
	out := New()
	for k, val := range v.counts {
		out.counts[k] = val
	}
	return out
}

// Keys returns the sorted set of participant ids known to v.
func (v *StateVector) Keys() []uint64 {
	keys := make([]uint64, 0, len(v.counts))
	for k := range v.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// unionKeys returns the sorted union of keys known to a and b.
func unionKeys(a, b *StateVector) []uint64 {
	seen := make(map[uint64]struct{}, len(a.counts)+len(b.counts))
	for k := range a.counts {
		seen[k] = struct{}{}
	}
	for k := range b.counts {
		seen[k] = struct{}{}
	}
	keys := make([]uint64, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Compare returns a negative number if v sorts before w, zero if equal, and
// a positive number otherwise. The order is lexicographic over the union
// of both key sets in ascending participant id: the lowest id whose
// counters differ decides. Vectors whose counters agree for every id
// (missing keys reading as zero) compare equal.
func (v *StateVector) Compare(w *StateVector) int {
	for _, u := range unionKeys(v, w) {
		a, b := v.Get(u), w.Get(u)
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Sum returns the total of every participant's counter, used by the
// algorithm's cleanup threshold check (current size minus lower-bound
// size).
func (v *StateVector) Sum() uint64 {
	var total uint64
	for _, n := range v.counts {
		total += n
	}
	return total
}

// Equal reports whether v and w have identical counters.
func (v *StateVector) Equal(w *StateVector) bool {
	return v.Compare(w) == 0
}

// CausallyBefore reports whether v ≤ w componentwise, i.e. every request
// accounted for in v has also been accounted for in w.
func (v *StateVector) CausallyBefore(w *StateVector) bool {
	for _, u := range unionKeys(v, w) {
		if v.Get(u) > w.Get(u) {
			return false
		}
	}
	return true
}

// String serializes v as "uid:count;uid:count;...", keys sorted ascending.
func (v *StateVector) String() string {
	keys := v.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d:%d", k, v.counts[k]))
	}
	return strings.Join(parts, ";")
}

// ToStringDiff serializes only the keys where v differs from base. Keys
// present in base but absent from v (i.e. v reports a lower count, which
// can never legitimately happen since counters never shrink, or a key base
// has that v never learned about) produce ErrKeyRemoval: the grammar has no
// way to say "forget this key", so such a diff must not be constructed.
func (v *StateVector) ToStringDiff(base *StateVector) (string, error) {
	for k := range base.counts {
		if _, ok := v.counts[k]; !ok {
			return "", fmt.Errorf("%w: key %d", ErrKeyRemoval, k)
		}
	}
	keys := v.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if base.Get(k) != v.counts[k] {
			parts = append(parts, fmt.Sprintf("%d:%d", k, v.counts[k]))
		}
	}
	return strings.Join(parts, ";"), nil
}

// FromString parses the "uid:count;..." grammar into a fresh StateVector.
func FromString(s string) (*StateVector, error) {
	v := New()
	if s == "" {
		return v, nil
	}
	for _, part := range strings.Split(s, ";") {
		uid, count, err := parsePair(part)
		if err != nil {
			return nil, err
		}
		v.counts[uid] = count
	}
	return v, nil
}

// FromStringDiff parses a diff produced by ToStringDiff, applying it on top
// of base: keys not mentioned are taken unchanged from base.
func FromStringDiff(diff string, base *StateVector) (*StateVector, error) {
	v := base.Copy()
	if diff == "" {
		return v, nil
	}
	for _, part := range strings.Split(diff, ";") {
		uid, count, err := parsePair(part)
		if err != nil {
			return nil, err
		}
		v.counts[uid] = count
	}
	return v, nil
}

func parsePair(part string) (uint64, uint64, error) {
	idx := strings.IndexByte(part, ':')
	if idx < 0 {
		return 0, 0, fmt.Errorf("%w: missing ':' in %q", ErrParse, part)
	}
	uid, err := strconv.ParseUint(part[:idx], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad participant id in %q: %v", ErrParse, part, err)
	}
	count, err := strconv.ParseUint(part[idx+1:], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad counter in %q: %v", ErrParse, part, err)
	}
	return uid, count, nil
}
