// Package host owns the two-phase lifecycle of a hosted model.
//
// A [Host] is constructed around a [Model] (or empty, for deferred
// building), mutated through [Host.MutableModel] while unfinalized, and
// then finalized exactly once. [Host.Finalize] locks the model's
// topology, derives the [StateLayout], and registers the default
// kinematics cache entries; from then on the host is immutable and safe
// to share, and [Host.CreateContext] can mint any number of independent
// [Context] values, each owning its own state vector and realized cache.
//
// All contract violations (double finalize, structural mutation after
// lock, context creation before finalize) fail fast with the sentinel
// errors in this package; none are recoverable.
package host
