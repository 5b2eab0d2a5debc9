// Package metadata records per-node tracing data for a task run and turns it
// into the execution graph consumed by logging and debugging collaborators.
//
// Single nodes get their timestamps from the engine while they run.
// Composite nodes get theirs afterwards from CalculateTimestamps, which rolls
// the nested sub-graph up bottom-up.
package metadata
