package prefabs

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

//go:embed scenes/*.yaml scripts/*.tengo
var files embed.FS

// Source reads scene and script files, preferring Dir on disk and falling
// back to FS. Either may be empty.
type Source struct {
	Dir string
	FS  fs.FS
}

// Embedded returns the built-in prefabs with a disk overlay rooted at dir.
func Embedded(dir string) Source {
	return Source{Dir: dir, FS: files}
}

// ReadScene reads scenes/<name>.
func (s Source) ReadScene(name string) ([]byte, error) {
	return s.read(cleanPath("scenes", name))
}

// ReadScript reads scripts/<name>.
func (s Source) ReadScript(name string) ([]byte, error) {
	return s.read(cleanPath("scripts", name))
}

// ModTime reports when the on-disk copy of a scene or script last changed.
func (s Source) ModTime(kind, name string) (time.Time, bool) {
	if s.Dir == "" {
		return time.Time{}, false
	}
	info, err := os.Stat(s.diskPath(cleanPath(kind, name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func (s Source) read(clean string) ([]byte, error) {
	if s.Dir != "" {
		if data, err := os.ReadFile(s.diskPath(clean)); err == nil {
			return data, nil
		}
	}
	if s.FS == nil {
		return nil, &fs.PathError{Op: "open", Path: clean, Err: fs.ErrNotExist}
	}
	return fs.ReadFile(s.FS, clean)
}

func (s Source) diskPath(clean string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(clean))
}

// cleanPath maps "dvd.yaml", "scenes/dvd.yaml" and "prefabs/scenes/dvd.yaml"
// to "scenes/dvd.yaml".
func cleanPath(kind, name string) string {
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, kind+"/"); ok {
		s = after
	}
	return path.Join(kind, path.Clean("/" + s)[1:])
}
