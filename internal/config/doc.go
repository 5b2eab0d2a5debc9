// Package config defines the format-agnostic configuration model for the
// application: action aliases and task graphs, along with the Loader
// interface for reading them from a concrete source.
//
// The `config.Model` is the single source of truth for the `action` and
// `task` packages. Concrete implementations of Loader, such as for HCL, are
// provided in separate packages.
package config
