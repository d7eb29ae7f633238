// Package ldl defines the query language of the trace monitor: ground facts,
// propositions, path expressions, and linear-time dynamic logic queries over
// finite sensor traces, together with negation normal form and the
// stable/unstable verdict lattice.
//
// All connectives are kept in negation normal form: negation appears only on
// ground facts, and Not pushes through connectives by structural descent.
// Variadic connectives carry at least two operands by construction; the smart
// constructors flatten nested connectives of the same kind so that structural
// keys stay stable for caching.
package ldl
