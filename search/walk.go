package search

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ErrIsDirectory is returned when a directory is searched without recursion.
var ErrIsDirectory = errors.New("is a directory")

// SearchPath searches a file, standard input for "-", or with recursive set, every file below a directory.
func (s *Searcher) SearchPath(path string, recursive bool) (Stats, error) {
	if path == "-" {
		return s.Search(StdinName, s.stdin)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Stats{}, errors.WithStack(err)
	}

	if info.IsDir() {
		if !recursive {
			return Stats{}, errors.Wrap(ErrIsDirectory, path)
		}
		return s.searchDir(path)
	}
	return s.searchFile(path)
}

func (s *Searcher) searchDir(root string) (Stats, error) {
	var total Stats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		// resolve symlinks
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			// symlinks may be broken, in that case, just ignore them
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					s.log.Debug("skipping broken symlink", zap.String("path", path))
					return nil
				}
				return err
			}
			// symlink may resolve to a directory, in which case we just ignore it
			if info.IsDir() {
				return nil
			}
		}

		st, err := s.searchFile(path)
		total.Add(st)
		return err
	})
	return total, errors.WithStack(err)
}

func (s *Searcher) searchFile(path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, errors.WithStack(err)
	}
	defer f.Close() // nolint: errcheck

	return s.Search(path, f)
}
