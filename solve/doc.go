// Package solve computes, for every function of a service, the subset of
// the shared configuration variables its handler code references.
//
// [Analyze] flattens each handler's local imports and scans the result;
// [Solve] additionally checks every reference against the shared
// configuration and assembles the per-function environments.
package solve
