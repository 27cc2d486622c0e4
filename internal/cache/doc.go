// Package cache implements dependency-tracked memoization for derived
// quantities.
//
// A [Registry] collects typed entry declarations (allocator, calculator,
// dependency tickets) while a host finalizes. Each execution context then
// realizes the registry into its own [Store]: one slot per entry plus a
// serial counter per [Ticket]. Mutations note the ticket they touched;
// [Note] cascades through the host's ticket [Graph] so downstream tickets
// go stale too. [Eval] recomputes a slot at most once per distinct
// dependency stamp and otherwise returns the memoized value.
//
// Slots are statically typed: an [Entry] carries its value type, and
// access goes through the checked assertion in [Eval] rather than any
// runtime inspection of slot contents.
package cache
