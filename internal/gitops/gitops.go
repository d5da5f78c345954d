// Package gitops versions a household repo with the git CLI.
package gitops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNothingToCommit is returned by CommitAll when the work tree is clean.
var ErrNothingToCommit = errors.New("nothing to commit")

// Author identifies who a commit is attributed to.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if _, err := run(dir, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// CommitAll stages every change under dir and commits it. Returns the short
// commit hash.
func CommitAll(dir, message string, author Author) (string, error) {
	if _, err := run(dir, "add", "-A"); err != nil {
		return "", err
	}

	status, err := run(dir, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	if status == "" {
		return "", ErrNothingToCommit
	}

	// Identity via -c so commits work on machines without a global git config.
	if _, err := run(dir,
		"-c", "user.name="+author.Name,
		"-c", "user.email="+author.Email,
		"commit", "--quiet", "-m", message, "--author", author.String(),
	); err != nil {
		return "", err
	}

	return run(dir, "rev-parse", "--short", "HEAD")
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", gitVerb(args), strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// gitVerb returns the subcommand name, skipping leading -c options.
func gitVerb(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-c" {
			i++
			continue
		}
		return args[i]
	}
	return ""
}
