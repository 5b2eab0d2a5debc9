// Package task compiles declared task graphs into executable Tasks.
//
// Each NodeOptions occurrence becomes exactly one node in the Task's arena,
// so a sub-graph referenced twice is compiled twice. A reference that leads
// back to an ancestor on the current compilation path is rejected with
// ErrConfiguration, as is any action alias the provider cannot resolve.
package task
