package learning

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"
	"weak"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var ErrInvalidOperation = errors.New("operation not valid at this storage depth")

var ErrEmpty = errors.New("storage leaf has no values")

var ErrInvalidPath = errors.New("key path does not match storage dimensions")

// Table is the mapping surface shared by every Storage node.
type Table[K comparable] interface {
	Get(key K) Entry[K]
	Set(key K, value float64) error
	Delete(key K)
	Keys() iter.Seq[K]
	Pairs() (iter.Seq2[K, float64], error)
	Len() int
}

var _ Table[string] = (*Storage[string])(nil)

// Represents an entry of a Storage node: a value at a leaf, or a pointer to a child node at an interior node.
type Entry[K comparable] struct {
	Value float64
	Node  *Storage[K]
}

// Returns true if this entry points to a child node on a lower dimension
func (e Entry[K]) IsNode() bool {
	return e.Node != nil
}

// settings shared by every node of one tree. Set once when the root is built.
type config struct {
	defaults Range
	persist  bool
	rng      *rand.Rand
	logger   *slog.Logger
}

// Storage is one node of a lazily populated value table. The root node effectively is the table itself.
type Storage[K comparable] struct {
	dimensions int
	cfg        *config

	// stored entries, in insertion order
	entries *orderedmap.OrderedMap[K, Entry[K]]

	// template of expected keys, copied into every child created from this node
	defaultKeys []K
	// expected keys not yet stored. only populated at leaves
	missing *orderedmap.OrderedMap[K, struct{}]

	parent    weak.Pointer[Storage[K]]
	parentKey K
}

// Seed is one initial value for Load: a full key path and the value stored at its end.
type Seed[K comparable] struct {
	Path  []K
	Value float64
}

type settings struct {
	dimensions int
	cfg        config
}

type Option func(*settings)

// WithDimensions sets the depth of the table. Values below 1 are treated as 1.
func WithDimensions(n int) Option {
	return func(s *settings) {
		s.dimensions = n
	}
}

// WithRange sets the bounds that default values are drawn from. The order of the bounds does not matter.
func WithRange(low, high float64) Option {
	return func(s *settings) {
		s.cfg.defaults = Range{Low: low, High: high}
	}
}

// WithPersist controls whether values materialized by a read-miss are kept.
func WithPersist(persist bool) Option {
	return func(s *settings) {
		s.cfg.persist = persist
	}
}

// WithRand uses the provided random source for default values.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) {
		s.cfg.rng = rng
	}
}

// WithLogger sets the logger used for debug output about purged branches.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.cfg.logger = logger
	}
}

// New creates the root of an empty table. Defaults: two dimensions, range [0, 1), persist enabled.
func New[K comparable](opts ...Option) *Storage[K] {
	s := settings{
		dimensions: 2,
		cfg: config{
			defaults: Range{Low: 0, High: 1},
			persist:  true,
		},
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.dimensions < 1 {
		s.dimensions = 1
	}
	if s.cfg.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.cfg.rng = rand.New(rand.NewPCG(seed, rand.Uint64()))
	}
	if s.cfg.logger == nil {
		s.cfg.logger = slog.Default().With("system", "learning")
	}
	cfg := s.cfg
	return newNode[K](s.dimensions, &cfg, nil)
}

func newNode[K comparable](dimensions int, cfg *config, defaultKeys []K) *Storage[K] {
	n := &Storage[K]{
		dimensions: dimensions,
		cfg:        cfg,
		entries:    orderedmap.New[K, Entry[K]](),
	}
	n.resetDefaultKeys(defaultKeys)
	return n
}

func (s *Storage[K]) resetDefaultKeys(keys []K) {
	s.defaultKeys = slices.Clone(keys)
	s.missing = orderedmap.New[K, struct{}]()
	if s.dimensions > 1 {
		return
	}
	for _, k := range keys {
		if _, ok := s.entries.Get(k); ok {
			continue
		}
		s.missing.Set(k, struct{}{})
	}
}

// Dimensions returns the number of key levels below and including this node.
func (s *Storage[K]) Dimensions() int {
	return s.dimensions
}

// Persist reports whether defaults drawn by a read-miss are kept.
func (s *Storage[K]) Persist() bool {
	return s.cfg.persist
}

// Range returns the bounds default values are drawn from.
func (s *Storage[K]) Range() Range {
	return s.cfg.defaults
}

// Number of stored entries. Default keys which have not been stored are not counted.
func (s *Storage[K]) Len() int {
	return s.entries.Len()
}

// SetDefaultKeys replaces the expected key set. Children created after this call inherit the new keys; existing children keep their own.
//
// At a leaf, the keys which are already stored are not considered missing.
func (s *Storage[K]) SetDefaultKeys(keys ...K) {
	s.resetDefaultKeys(keys)
}

// DefaultKeys returns the expected keys of a leaf which have not been stored yet, in declaration order.
func (s *Storage[K]) DefaultKeys() []K {
	out := make([]K, 0, s.missing.Len())
	for p := s.missing.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Reads the entry for the key, materializing it if missing.
//
// At an interior node a missing key gets a new, empty child node. At a leaf a missing key gets a value drawn from the default range; if persist is disabled the value is returned but not kept, and the purge may cascade up the tree.
func (s *Storage[K]) Get(key K) Entry[K] {
	if e, ok := s.entries.Get(key); ok {
		return e
	}

	if s.dimensions > 1 {
		child := newNode(s.dimensions-1, s.cfg, s.defaultKeys)
		child.parent = weak.Make(s)
		child.parentKey = key
		e := Entry[K]{Node: child}
		s.entries.Set(key, e)
		materializedEntries.WithLabelValues("node").Inc()
		return e
	}

	e := Entry[K]{Value: s.draw()}
	s.entries.Set(key, e)
	materializedEntries.WithLabelValues("value").Inc()
	if !s.cfg.persist {
		s.Purge(key)
	} else {
		s.missing.Delete(key)
	}
	return e
}

// Child returns the child node for the key, creating it if missing. Only valid at interior nodes.
func (s *Storage[K]) Child(key K) (*Storage[K], error) {
	if s.dimensions == 1 {
		return nil, fmt.Errorf("child of leaf node: %w", ErrInvalidOperation)
	}
	return s.Get(key).Node, nil
}

// Value returns the value for the key, drawing a default if missing. Only valid at leaves.
func (s *Storage[K]) Value(key K) (float64, error) {
	if s.dimensions > 1 {
		return 0, fmt.Errorf("value at %d-dimensional node: %w", s.dimensions, ErrInvalidOperation)
	}
	return s.Get(key).Value, nil
}

// Lookup reads the value at the end of a full key path, materializing nodes along the way.
func (s *Storage[K]) Lookup(path ...K) (float64, error) {
	leaf, err := s.walk(path)
	if err != nil {
		return 0, err
	}
	return leaf.Get(path[len(path)-1]).Value, nil
}

// Set stores the value under the key. Only valid at leaves; interior nodes are only ever created by reads.
func (s *Storage[K]) Set(key K, value float64) error {
	if s.dimensions > 1 {
		return fmt.Errorf("set value at %d-dimensional node: %w", s.dimensions, ErrInvalidOperation)
	}
	s.entries.Set(key, Entry[K]{Value: value})
	s.missing.Delete(key)
	return nil
}

// SetPath stores the value at the end of a full key path, creating intermediate nodes as needed.
func (s *Storage[K]) SetPath(value float64, path ...K) error {
	leaf, err := s.walk(path)
	if err != nil {
		return err
	}
	return leaf.Set(path[len(path)-1], value)
}

// Load applies initial values to the table.
func (s *Storage[K]) Load(seeds ...Seed[K]) error {
	for _, sd := range seeds {
		if err := s.SetPath(sd.Value, sd.Path...); err != nil {
			return fmt.Errorf("loading seed %v: %w", sd.Path, err)
		}
	}
	return nil
}

// walks down to the leaf addressed by all but the last key of the path
func (s *Storage[K]) walk(path []K) (*Storage[K], error) {
	if len(path) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d keys for %d dimensions", ErrInvalidPath, len(path), s.dimensions)
	}
	n := s
	for _, k := range path[:len(path)-1] {
		n = n.Get(k).Node
	}
	return n, nil
}

// Delete removes the key if present. It never cascades: an emptied node stays attached.
func (s *Storage[K]) Delete(key K) {
	e, ok := s.entries.Delete(key)
	if ok && e.Node != nil {
		e.Node.detach()
	}
}

// Purge removes the key. If that leaves the node empty, the node is removed from its parent, recursively up to (but never including) the root.
func (s *Storage[K]) Purge(key K) {
	s.entries.Delete(key)
	if s.entries.Len() > 0 {
		return
	}
	parent := s.parent.Value()
	if parent == nil {
		return
	}
	s.detach()
	parent.purgeChild(s.parentKey, s)
}

// the parent's entry may already point at a newer node under the same key; only the exact child is dropped
func (s *Storage[K]) purgeChild(key K, child *Storage[K]) {
	e, ok := s.entries.Get(key)
	if !ok || e.Node != child {
		return
	}
	s.cfg.logger.Debug("purging empty branch", "dimensions", s.dimensions, "key", key)
	purgedBranches.Inc()
	s.Purge(key)
}

func (s *Storage[K]) detach() {
	s.parent = weak.Pointer[Storage[K]]{}
}

func (s *Storage[K]) draw() float64 {
	defaultDraws.Inc()
	return s.cfg.defaults.Draw(s.cfg.rng)
}
