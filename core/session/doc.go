// Package session implements the fare prediction session: one render cycle
// turns a trip request into distance, features and, only when explicitly
// requested, a fresh prediction. The last successful fare is cached per
// session and re-displayed on every later render until the next explicit
// prediction overwrites it. The cache is never cleared.
//
// Manager shares one immutable prediction.Handle across sessions, keeps each
// session's cache in a Store and serializes renders of the same session.
package session
