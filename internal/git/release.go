package git

import (
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const shortHashLen = 7

// ResolveRelease returns the release identifier for the repository containing dir. Parent
// directories are searched for the .git directory. When several tags point at HEAD the
// lexicographically greatest one is used.
func ResolveRelease(dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", ClassifyGitError(err, "open", dir)
	}
	head, err := repo.Head()
	if err != nil {
		return "", ClassifyGitError(err, "head", dir)
	}

	tags, err := headTags(repo, head.Hash())
	if err != nil {
		return "", ClassifyGitError(err, "tags", dir)
	}
	if len(tags) > 0 {
		return tags[len(tags)-1], nil
	}
	return head.Hash().String()[:shortHashLen], nil
}

// headTags lists the short names of lightweight and annotated tags whose commit is head.
func headTags(repo *gogit.Repository, head plumbing.Hash) ([]string, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if tag, tagErr := repo.TagObject(target); tagErr == nil {
			commit, commitErr := tag.Commit()
			if commitErr != nil {
				return nil
			}
			target = commit.Hash
		}
		if target == head {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	sort.Strings(names)
	return names, err
}
