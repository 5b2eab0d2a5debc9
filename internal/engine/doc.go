// Package engine is the "Execution Layer" of the application. It walks a
// compiled task.Task against one fragment, following the transition each
// node returns until a node has no successor for it.
//
// Two failure channels exist. A recoverable action error is logged and
// routed through the _error transition like any other outcome. A fatal
// error (action.Fatal, or a panic inside an action) aborts the traversal and
// is returned to the caller together with the partial FragmentEvent.
//
// Composite nodes fan out to their nested branches concurrently. Each branch
// works on a private clone of the fragment; when every branch has finished,
// the clones are merged back in declaration order and the composite follows
// onSuccess when all branches succeeded, onError otherwise.
//
// FragmentsEngine runs many fragments at once and returns their events in
// the order the fragments were given.
package engine
