// Package tempfile manages per-request scratch files on local disk.
package tempfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Arena is a directory under which per-request scratch scopes allocate
// their files. One arena is shared by all requests of a process.
type Arena struct {
	dir string
}

// NewArena creates (if needed) the arena directory and returns the arena.
func NewArena(dir string) (*Arena, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create arena directory: %w", err)
	}
	return &Arena{dir: dir}, nil
}

// Dir returns the arena's root directory.
func (a *Arena) Dir() string {
	return a.dir
}

// NewScope starts a scratch scope for one request. File names are
// derived from a fresh uuid, not wall-clock time, so two requests
// arriving in the same millisecond cannot collide.
func (a *Arena) NewScope() *Scope {
	return &Scope{
		dir:   a.dir,
		token: uuid.NewString(),
	}
}

// Scope owns the scratch files of a single request. Callers must defer
// Close so the files are removed on every exit path, including panics.
type Scope struct {
	dir   string
	token string
	paths []string
}

// Path reserves a scratch file path for the given role and extension,
// e.g. {arena}/{uuid}_input.mp4. The file itself is created by the
// caller; Close removes it regardless.
func (s *Scope) Path(role, ext string) string {
	p := filepath.Join(s.dir, fmt.Sprintf("%s_%s.%s", s.token, role, ext))
	s.paths = append(s.paths, p)
	return p
}

// Close removes every path reserved by the scope. Removal is best
// effort: a file that was never created or already removed is not an
// error, and one failed removal does not stop the rest.
func (s *Scope) Close() {
	for _, p := range s.paths {
		_ = os.Remove(p)
	}
	s.paths = nil
}
