// Package processor defines the contract shared by every per-element
// computation unit of the graph and a Base type that implements its
// bookkeeping.
//
// A processor reads its inputs through readers held in slots. A slot is
// either Owned, where the reader lives and dies with the processor, or
// Borrowed, where the reader sits in an Arena owned by someone else and the
// slot only keeps its handle. Nodes that fan one logical node out into many
// processors use borrowed slots so that every clone reading the same
// channel shares one cursor.
package processor
