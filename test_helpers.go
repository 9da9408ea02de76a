package relver

import (
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

var testSignature = &object.Signature{
	Name:  "test",
	Email: "test@example.com",
	When:  time.Now(),
}

// testRepoCreate creates a new in-memory git repository for testing.
func testRepoCreate() (*git.Repository, error) {
	storage := memory.NewStorage()
	fs := memfs.New()
	return git.Init(storage, fs)
}

// testCommit writes a file and commits it with the given message,
// using the shared test signature.
func testCommit(repo *git.Repository, filename, message string) (plumbing.Hash, error) {
	return testCommitAs(repo, filename, message, testSignature)
}

// testCommitAs is testCommit with an explicit author.
func testCommitAs(repo *git.Repository, filename, message string, author *object.Signature) (plumbing.Hash, error) {
	workTree, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if err := writeFile(workTree.Filesystem, filename, "content of "+filename); err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := workTree.Add(filename); err != nil {
		return plumbing.ZeroHash, err
	}
	return workTree.Commit(message, &git.CommitOptions{Author: author})
}

// testTaggedCommit commits a file and tags the result.
func testTaggedCommit(repo *git.Repository, filename, message, tag string) (plumbing.Hash, error) {
	hash, err := testCommit(repo, filename, message)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := repo.CreateTag(tag, hash, nil); err != nil {
		return plumbing.ZeroHash, err
	}
	return hash, nil
}

// writeFile writes content to a file in the given filesystem.
func writeFile(fs billy.Filesystem, filename, content string) error {
	file, err := fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write([]byte(content))
	return err
}
