// Package git runs the git binary against a working directory. The fs medium
// uses it to keep a commit history of the data directory.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// LockFile is created in the working directory while a caller holds the lock.
const LockFile = ".jotter.lock"

// ErrNotInstalled is returned when no git binary is on PATH.
var ErrNotInstalled = errors.New("git is not installed")

// Commit is one entry of the log.
type Commit struct {
	Hash    string    `json:"hash"`
	Time    time.Time `json:"time"`
	Subject string    `json:"subject"`
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.Logger = logger
	}
}

// WithAuthor sets the identity recorded on commits, overriding git's own
// configuration. Both values must be set to take effect.
func WithAuthor(name, email string) Option {
	return func(c *Client) {
		c.authorName = name
		c.authorEmail = email
	}
}

// Client wraps git command execution with a file-based lock shared by every
// process working on the same directory.
type Client struct {
	WorkDir string
	Logger  *slog.Logger

	authorName  string
	authorEmail string
	lockPath    string
}

// NewClient creates a client for workDir.
func NewClient(workDir string, opts ...Option) *Client {
	c := &Client{
		WorkDir:  workDir,
		lockPath: LockFile,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Installed reports whether a git binary can be found.
func Installed() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Lock acquires the directory lock, retrying until it succeeds or ctx is done.
func (c *Client) Lock(ctx context.Context) (func(), error) {
	fullLockPath := filepath.Join(c.WorkDir, c.lockPath)

	for {
		f, err := os.OpenFile(fullLockPath, os.O_CREATE|os.O_EXCL, 0o666)
		if err == nil {
			f.Close()
			return func() {
				os.Remove(fullLockPath)
			}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire lock: %w", ctx.Err())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Run executes a raw git command in the working directory.
// It does not take the lock; callers that mutate the repository should.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.WorkDir
	if c.authorName != "" && c.authorEmail != "" {
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME="+c.authorName,
			"GIT_AUTHOR_EMAIL="+c.authorEmail,
			"GIT_COMMITTER_NAME="+c.authorName,
			"GIT_COMMITTER_EMAIL="+c.authorEmail,
		)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrNotInstalled
		}
		return out.String(), fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, out.String())
	}
	return strings.TrimSpace(out.String()), nil
}

// Init creates the repository unless the working directory already is one.
func (c *Client) Init(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(c.WorkDir, ".git")); err == nil {
		return nil
	}
	_, err := c.Run(ctx, "init", "--quiet")
	return err
}

// Add stages files.
func (c *Client) Add(ctx context.Context, files ...string) error {
	if len(files) == 0 {
		return nil
	}
	_, err := c.Run(ctx, append([]string{"add", "--"}, files...)...)
	return err
}

// Rm stages the removal of files. Files that were never tracked are ignored.
func (c *Client) Rm(ctx context.Context, files ...string) error {
	if len(files) == 0 {
		return nil
	}
	_, err := c.Run(ctx, append([]string{"rm", "--cached", "--ignore-unmatch", "--quiet", "--"}, files...)...)
	return err
}

// Commit records the staged changes.
func (c *Client) Commit(ctx context.Context, msg string) error {
	_, err := c.Run(ctx, "commit", "--quiet", "-m", msg)
	return err
}

// Status returns the porcelain status, restricted to files when given.
func (c *Client) Status(ctx context.Context, files ...string) (string, error) {
	args := []string{"status", "--porcelain"}
	if len(files) > 0 {
		args = append(append(args, "--"), files...)
	}
	return c.Run(ctx, args...)
}

// Log returns up to n commits, newest first. A repository without commits
// has an empty log.
func (c *Client) Log(ctx context.Context, n int) ([]Commit, error) {
	if _, err := c.Run(ctx, "rev-parse", "--verify", "--quiet", "HEAD"); err != nil {
		return nil, nil
	}
	out, err := c.Run(ctx, "log", fmt.Sprintf("-n%d", n), "--pretty=format:%h%x09%cI%x09%s")
	if err != nil {
		return nil, err
	}
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		ts, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("failed to parse commit time %q: %w", parts[1], err)
		}
		commits = append(commits, Commit{Hash: parts[0], Time: ts, Subject: parts[2]})
	}
	return commits, nil
}
