// Package git derives the release identifier of a build from the project's git repository.
//
// The identifier is attached to error reports and to the build report. A tag pointing at HEAD
// wins; otherwise the abbreviated HEAD commit hash is used. The repository is opened with
// go-git, so no git binary is required.
package git
