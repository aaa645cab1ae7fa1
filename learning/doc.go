/*
Package learning implements Storage, a sparse, lazily populated, multi-dimensional value table for tabular reinforcement learning (Q-values, per-pair learning rates, and similar statistics).

## Terminology

dimensions: the remaining nesting depth from a node down to its values. The root of a Q table indexed by (percept, action) has two dimensions.

leaf: a node with one dimension. Leaves hold float64 values directly, keyed by the last axis.

interior: a node with more than one dimension. Interior nodes hold child nodes keyed by the current axis.

materialization: reading a missing key creates it. At an interior node this creates an empty child; at a leaf it draws a value uniformly from the configured default range.

default keys: keys declared as "expected" (for example, the full action set). At a leaf, default keys that have not been set are surfaced by Pairs, Max, Argmax and friends with a freshly drawn value, without being stored.

purge cascade: removing the last entry of a node removes the node from its parent, recursively, stopping at the root.

## Tricky Bits

When persist is disabled, a read-miss at a leaf returns a sampled value but keeps no record of it. The value is inserted and immediately purged, which can unwind a chain of intermediate nodes created by the same read. A caller holding a pointer to such an intermediate node is then holding a detached node: further reads through it still work but no longer affect the tree.

Parent links are weak pointers. They are only used to walk up during a purge cascade and never keep a node alive.

Storage is not safe for concurrent use. A read can mutate the whole parent chain, so all access to one tree must be serialized by the caller.
*/
package learning
