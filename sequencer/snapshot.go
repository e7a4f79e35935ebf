package sequencer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const snapshotTimeFormat = "2006-01-02_15-04-05"

// SnapshotInfo describes a saved pattern set (for listing)
type SnapshotInfo struct {
	Dir       string
	Name      string // parsed from the directory name (empty if unnamed)
	Timestamp time.Time
}

// SaveSnapshot writes every pattern of set as grid text into a new
// timestamped directory under dir, named 2006-01-02_15-04-05[_name]. It
// returns the snapshot directory's name.
func SaveSnapshot(fs afero.Fs, dir string, set *PatternSet, name string, now time.Time) (string, error) {
	snap := now.Format(snapshotTimeFormat)
	if name = sanitizeName(name); name != "" {
		snap += "_" + name
	}
	path := filepath.Join(dir, snap)
	if err := fs.MkdirAll(path, 0755); err != nil {
		return "", errors.Wrapf(err, "create %s", path)
	}

	for i := 0; i < set.NumPatterns(); i++ {
		file := filepath.Join(path, DefaultPatternNames[i])
		if err := afero.WriteFile(fs, file, []byte(set.Pattern(i).String()), 0644); err != nil {
			return "", errors.Wrapf(err, "write %s", file)
		}
	}
	return snap, nil
}

// ListSnapshots returns the snapshots in dir, newest first
func ListSnapshots(fs afero.Fs, dir string) ([]SnapshotInfo, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SnapshotInfo{}, nil
		}
		return nil, errors.Wrapf(err, "list %s", dir)
	}

	var snaps []SnapshotInfo
	for _, entry := range entries {
		if !entry.IsDir() || len(entry.Name()) < len(snapshotTimeFormat) {
			continue
		}
		base := entry.Name()
		ts, err := time.Parse(snapshotTimeFormat, base[:len(snapshotTimeFormat)])
		if err != nil {
			continue
		}

		name := ""
		if len(base) > len(snapshotTimeFormat)+1 && base[len(snapshotTimeFormat)] == '_' {
			name = base[len(snapshotTimeFormat)+1:]
		}
		snaps = append(snaps, SnapshotInfo{Dir: base, Name: name, Timestamp: ts})
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
	return snaps, nil
}

// SnapshotPaths returns the pattern sources of a snapshot in rotation
// order. An empty snap selects the newest one.
func SnapshotPaths(fs afero.Fs, dir, snap string) ([]string, error) {
	if snap == "" {
		snaps, err := ListSnapshots(fs, dir)
		if err != nil {
			return nil, err
		}
		if len(snaps) == 0 {
			return nil, errors.Errorf("no snapshots in %s", dir)
		}
		snap = snaps[0].Dir
	}

	var paths []string
	for _, name := range DefaultPatternNames {
		p := filepath.Join(dir, snap, name)
		ok, err := afero.Exists(fs, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, errors.Wrapf(ErrSourceUnavailable, "snapshot %s", snap)
	}
	return paths, nil
}

// sanitizeName removes characters that are problematic in file names
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '-'
		case '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, name)
}
