package git

import (
	stderrors "errors"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/pwabuilder/internal/foundation/errors"
)

// GitError simplifies creating a git-scoped ClassifiedError.
func GitError(message string) *errors.ErrorBuilder {
	return errors.NewError(errors.CategoryGit, message)
}

// ClassifyGitError translates go-git errors into ClassifiedErrors.
func ClassifyGitError(err error, op, dir string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	builder := GitError("git operation failed").
		WithCause(err).
		WithContext("op", op).
		WithContext("dir", dir)

	switch {
	case stderrors.Is(err, gogit.ErrRepositoryNotExists):
		builder.WithCategory(errors.CategoryNotFound)
	case stderrors.Is(err, plumbing.ErrReferenceNotFound):
		// A freshly initialized repository has no HEAD commit yet.
		builder.WithCategory(errors.CategoryNotFound).WithContext("reason", "no commits")
	}
	return builder.Warning().Build()
}
