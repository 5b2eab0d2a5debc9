// Package action defines executable actions and how configured aliases are
// turned into them.
//
// A Factory is registered under a name and builds actions from an opaque
// config blob. The Provider resolves an alias by looking up its
// ActionOptions, resolving the nested doAction alias first, and handing the
// result to the factory, so decorators such as circuit breakers and caches
// wrap the action they protect. Instances from Cacheable factories are built
// once per alias and shared by every later lookup.
//
// Errors returned by an action are recoverable and route the graph through
// the _error transition, unless wrapped with Fatal, which aborts the task.
package action
