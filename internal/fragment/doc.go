// Package fragment defines the data threaded through a task execution: the
// mutable Fragment, the immutable ClientRequest snapshot, the Context pairing
// both, and the Result an action returns.
//
// Transitions are plain strings. Success, Error and Fallback are reserved;
// every other value is a graph-defined custom transition.
package fragment
