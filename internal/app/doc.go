// Package app contains the core application logic. It wires the loader,
// the factory registry, the action provider, the task compiler and the
// engines together, and runs one batch of fragments through them,
// decoupled from any specific entrypoint like a CLI or server.
package app
