// Package build runs the asset build of the booking PWA.
//
// Service is the single entry point used by the CLI (build and watch). A build executes the
// stages returned by stages.DefaultPipeline strictly in order: stylesheet compilation and module
// bundling are fatal on failure; legacy compilation, asset copying, entry promotion, reference
// rewriting and duplicate pruning only ever produce warnings.
//
// Every build gets a uuid build id and a release identifier. Both are attached to log records,
// the returned BuildReport and, when configured, the build history in the event store.
package build
