// Package gateway talks to the shop back-office API. It turns a
// types.QueryState into a query request, posts it, and normalizes the
// response envelope, including the doubly-encoded variant one endpoint
// returns, into typed results or errors.
//
// Every call reports one of three outcomes: success, a *types.RemoteFailure
// carrying the backend message, or a *types.TransportError for network and
// decode failures. Nothing is retried.
package gateway
