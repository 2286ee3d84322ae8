package githubmcp

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Resolution error kinds. Tool handlers turn these into structured error
// results; callers distinguish them with errors.Is.
var (
	// ErrNoRepositoryReference means neither an explicit reference nor a
	// discoverable local remote URL was available.
	ErrNoRepositoryReference = errors.New(`cannot resolve repository: provide "repo" (owner/name or a GitHub URL) or a "root_path" inside a git checkout`)

	// ErrUnrecognizedRef means a reference or remote URL did not match any
	// accepted shorthand or URL shape.
	ErrUnrecognizedRef = errors.New("unrecognized repository reference")

	// ErrMetadataUnreadable means a .git directory was found but its config
	// could not be read. Distinct from "no repository here", which is a
	// normal absence, this points at a real local-environment problem.
	ErrMetadataUnreadable = errors.New("git metadata unreadable")
)

// RepositoryRef addresses a remote repository as an owner/name pair. Case is
// preserved verbatim; the GitHub API does its own case-insensitive matching.
type RepositoryRef struct {
	Owner string
	Name  string
}

func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

var (
	shorthandRe     = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
	scpRemoteRe     = regexp.MustCompile(`^git@([^/:]+):([^/]+?)/([^/]+?)(?:\.git)?$`)
	remoteSectionRe = regexp.MustCompile(`(?i)^\[remote\s+"([^"]+)"\]$`)
)

// ResolveRepository produces the repository a tool invocation targets.
// Precedence is an explicit ordered list: an explicit reference always wins
// and auto-detection is skipped entirely; otherwise the remote URL discovered
// from rootPath's git metadata is parsed; with neither source the resolution
// fails with ErrNoRepositoryReference.
func ResolveRepository(explicitRef, rootPath string) (RepositoryRef, error) {
	if strings.TrimSpace(explicitRef) != "" {
		return ParseRepoRef(explicitRef)
	}

	remoteURL, found, err := locateRemoteURL(rootPath)
	if err != nil {
		return RepositoryRef{}, err
	}
	if !found {
		return RepositoryRef{}, ErrNoRepositoryReference
	}
	return ParseRepoRef(remoteURL)
}

// ParseRepoRef parses an explicit repository reference or a remote URL.
// Accepted shapes: "owner/name" shorthand, https/http URLs, scp-style
// "git@host:owner/name" remotes, and ssh:// URLs. A trailing ".git" or "/"
// is stripped; anything deeper or shallower than two path segments fails.
func ParseRepoRef(ref string) (RepositoryRef, error) {
	s := strings.TrimSpace(ref)

	if m := shorthandRe.FindStringSubmatch(s); m != nil {
		return RepositoryRef{Owner: m[1], Name: m[2]}, nil
	}

	if m := scpRemoteRe.FindStringSubmatch(s); m != nil {
		return RepositoryRef{Owner: m[2], Name: m[3]}, nil
	}

	if strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "ssh://") {
		u, err := url.Parse(s)
		if err != nil {
			return RepositoryRef{}, fmt.Errorf("%w: %q", ErrUnrecognizedRef, ref)
		}
		return refFromURLPath(u.Path, ref)
	}

	return RepositoryRef{}, fmt.Errorf("%w: %q (want owner/name, an https URL or a git@host: remote)", ErrUnrecognizedRef, ref)
}

func refFromURLPath(path, original string) (RepositoryRef, error) {
	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")

	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepositoryRef{}, fmt.Errorf("%w: %q (URL path must be exactly owner/name)", ErrUnrecognizedRef, original)
	}
	return RepositoryRef{Owner: parts[0], Name: parts[1]}, nil
}

// locateRemoteURL walks parent directories from startPath looking for a .git
// entry and extracts a remote fetch URL from its config, by pure text
// parsing. It never invokes the git binary. A repository simply not being
// there is not an error: found is false and err is nil.
func locateRemoteURL(startPath string) (remoteURL string, found bool, err error) {
	dir := strings.TrimSpace(startPath)
	if dir == "" {
		dir, err = os.Getwd()
		if err != nil {
			return "", false, err
		}
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", false, err
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		gitPath := filepath.Join(dir, ".git")
		if info, statErr := os.Stat(gitPath); statErr == nil {
			if info.IsDir() {
				return remoteURLFromConfig(filepath.Join(gitPath, "config"))
			}
			if gitDir := readWorktreeGitDir(gitPath, dir); gitDir != "" {
				return remoteURLFromConfig(filepath.Join(gitDir, "config"))
			}
			// A .git file that is not a usable redirect must not hide an
			// enclosing repository: keep walking.
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Filesystem root reached without a match.
			return "", false, nil
		}
		dir = parent
	}
}

// readWorktreeGitDir handles linked worktrees, where .git is a file holding
// "gitdir: <path>" instead of a directory. Relative targets resolve against
// the worktree root. Returns "" when the file is not a usable redirect.
func readWorktreeGitDir(gitFile, worktreeDir string) string {
	raw, err := os.ReadFile(gitFile)
	if err != nil {
		return ""
	}
	content := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(strings.ToLower(content), "gitdir:") {
		return ""
	}
	target := strings.TrimSpace(content[len("gitdir:"):])
	if target == "" {
		return ""
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(worktreeDir, target)
	}
	if _, err := os.Stat(target); err != nil {
		return ""
	}
	return target
}

func remoteURLFromConfig(configPath string) (string, bool, error) {
	f, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %s: %v", ErrMetadataUnreadable, configPath, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return "", false, fmt.Errorf("%w: %s: %v", ErrMetadataUnreadable, configPath, err)
	}

	if u, ok := remoteURLFromLines(lines, "origin"); ok {
		return u, true, nil
	}
	// No origin: fall back to the first remote section with a url.
	if u, ok := remoteURLFromLines(lines, ""); ok {
		return u, true, nil
	}
	return "", false, nil
}

// remoteURLFromLines scans pre-trimmed config lines for the url of the named
// remote; an empty name accepts any remote section. Comments, blank lines,
// stray brackets and truncated lines are all skipped, never fatal.
func remoteURLFromLines(lines []string, remote string) (string, bool) {
	inRemote := false
	for _, line := range lines {
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			m := remoteSectionRe.FindStringSubmatch(line)
			inRemote = m != nil && (remote == "" || strings.EqualFold(m[1], remote))
			continue
		}
		if !inRemote {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "url") {
			u := strings.Trim(strings.TrimSpace(value), `"'`)
			if u != "" {
				return u, true
			}
		}
	}
	return "", false
}
