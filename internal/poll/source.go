// Package poll manages mail sources: connecting, polling for new
// messages, and watching maildirs for incoming mail. Poll and connect
// operations are designed to run as supervised background units; the
// expected failure modes (source unreachable, directory missing) are
// handled and logged inside the operation, while anything escaping an
// operation is an unexpected condition that terminates the session.
package poll

import (
	"os"
	"path/filepath"

	"skiff/internal/config"
	"skiff/internal/errors"

	"github.com/gobwas/glob"
)

// Source is one pollable mail source.
type Source interface {
	// Name returns the source's unique diagnostic name.
	Name() string
	// Connect verifies the source is reachable. Contention-free but
	// may fail with a SourceConnectFailed error.
	Connect() error
	// Poll scans for new messages and returns how many arrived.
	Poll() (int, error)
	// WatchDirs returns the directories to watch for incoming mail,
	// or nil when watching is disabled for this source.
	WatchDirs() []string
}

// MaildirSource is a Source over a maildir tree. Folders are the
// immediate subdirectories containing a new/ dir; the include patterns
// from configuration select which of them to poll.
type MaildirSource struct {
	name    string
	root    string
	include []glob.Glob
	watch   bool
}

// NewMaildirSource builds a source from its configuration, compiling
// the folder include patterns.
func NewMaildirSource(cfg config.SourceConfig) (*MaildirSource, error) {
	s := &MaildirSource{
		name:  cfg.Name,
		root:  cfg.Path,
		watch: cfg.Watch,
	}
	for _, pattern := range cfg.Folders {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.NewConfigError("invalid folder pattern", pattern, errors.InvalidConfig, err)
		}
		s.include = append(s.include, g)
	}
	return s, nil
}

// Name returns the source's diagnostic name.
func (s *MaildirSource) Name() string {
	return s.name
}

// Connect checks that the maildir root exists and is a directory.
func (s *MaildirSource) Connect() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return errors.NewSourceError("source unreachable", s.name, errors.SourceConnectFailed, err)
	}
	if !info.IsDir() {
		return errors.NewSourceError("source path is not a directory", s.name, errors.SourceConnectFailed, nil)
	}
	return nil
}

// Poll counts messages waiting in the new/ dir of every included
// folder.
func (s *MaildirSource) Poll() (int, error) {
	folders, err := s.folders()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, folder := range folders {
		entries, err := os.ReadDir(filepath.Join(folder, "new"))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return count, errors.NewSourceError("cannot read folder", s.name, errors.SourcePollFailed, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				count++
			}
		}
	}
	return count, nil
}

// WatchDirs returns the new/ dirs of included folders when watching is
// enabled.
func (s *MaildirSource) WatchDirs() []string {
	if !s.watch {
		return nil
	}
	folders, err := s.folders()
	if err != nil {
		return nil
	}
	var dirs []string
	for _, folder := range folders {
		newDir := filepath.Join(folder, "new")
		if info, err := os.Stat(newDir); err == nil && info.IsDir() {
			dirs = append(dirs, newDir)
		}
	}
	return dirs
}

// folders lists the maildir folders matching the include patterns. The
// root itself counts as the folder "INBOX" when it carries a new/ dir.
func (s *MaildirSource) folders() ([]string, error) {
	var out []string

	if info, err := os.Stat(filepath.Join(s.root, "new")); err == nil && info.IsDir() {
		if s.included("INBOX") {
			out = append(out, s.root)
		}
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.NewSourceError("cannot list folders", s.name, errors.SourcePollFailed, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(s.root, e.Name())
		if info, err := os.Stat(filepath.Join(sub, "new")); err != nil || !info.IsDir() {
			continue
		}
		if s.included(e.Name()) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *MaildirSource) included(folder string) bool {
	if len(s.include) == 0 {
		return true
	}
	for _, g := range s.include {
		if g.Match(folder) {
			return true
		}
	}
	return false
}
