// Package psychometrics computes item-quality and achievement
// statistics over a binary response matrix: KR-20 reliability,
// upper/lower-group discrimination, per-item correct rates, and
// achievement-band distributions.
//
// Each statistic validates its own preconditions and fails with a
// scoped, kinded error; a degenerate input for one statistic never
// blocks computation of the others. All inputs are treated as immutable
// snapshots and the calculator holds no state between calls, so
// independent analysis requests may run concurrently as long as each
// carries its own configuration.
package psychometrics
