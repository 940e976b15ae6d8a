// Package charm defines the data model shared by the resolver, the prober
// and the survey aggregator.
//
// A [Package] is one catalog entry. A [ConsumerSet] holds the names of charms
// that declare the surveyed integration interface. Each package maps to at
// most one [Repository], and each resolved repository yields a [Detection].
//
// All types here are values: they are created once per survey pass and never
// mutated afterwards, so they are safe to share between goroutines.
package charm
