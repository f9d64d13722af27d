// Package acl is the anti-corruption layer between the remote quote
// collection and the domain.
//
// The remote speaks in posts ({id, userId, title, body, category?}); the
// domain speaks in quotes ({text, category}). Nothing outside this package
// sees a post. The translation is lossy on purpose:
//
//   - text is the post title, or its body when the title is blank
//   - category is the post category, or the configured default
//   - posts that reduce to an empty text are dropped
//
// # Error Handling Strategy
//
// Every failure leaves the package as a domain error:
//   - transport failures and non-2xx responses → [domain.NetworkError]
//   - payloads that are not a JSON array of objects → [domain.DecodeError]
//
// [BaseAdapter], [MapHTTPError] and [DecodeResponse] hold the mechanics so
// a second remote can be added by embedding [BaseAdapter] and writing its
// own translator.
package acl
