// Package types defines the query state, page results, wire envelope, domain
// records and standard errors shared by the shopadmin table bindings.
//
// QueryState is the only mutable value here; it is owned by a single
// grid.Controller. PageResult values are immutable once built and replace the
// controller snapshot wholesale.
package types
