/*
Package fn provides the small functional toolkit the graft core composes with:
immutable map updates with structural sharing, function composition,
conditional application, folds, and predicate combinators.

Everything in this package is pure and total: no function mutates its input,
and every function returns a value for every input. The graft core relies on
these guarantees when it threads node snapshots through commits.
*/
package fn
