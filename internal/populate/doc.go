// Package populate fills entity types with generated data.
//
// An EntityPopulator guesses a Formatter for every field of one entity type and
// materializes instances; a Populator runs several EntityPopulators in registration
// order, exposing already created instances through an InsertionContext so that
// associations can reference them. Referenced types must be registered before their
// referrers: no dependency sorting is performed.
//
// Runs are single-threaded. Identifier generation reads the existing identifiers
// and retries random candidates without locking, so concurrent runs against the same
// store may collide.
package populate
