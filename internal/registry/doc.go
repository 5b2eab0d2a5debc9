// Package registry provides the central "glue" for the module system.
//
// The Registry maps the factory names used in configuration (e.g.
// "inline-body") to the compiled Go factories that build actions, and cache
// type names (e.g. "redis") to cache backends. It is populated explicitly at
// startup by the host program through Module.Register; nothing is discovered
// implicitly.
//
// After registration the registry is validated against the loaded
// configuration so that structural mistakes surface before any fragment is
// processed.
package registry
