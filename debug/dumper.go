package debug

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// ErrDumpLimit is returned once a key has spent its per-session dump budget.
var ErrDumpLimit = errors.New("dump limit reached")

// Dumper writes crops to <dir>/<session>/<kind>/<key>.png. Each key holds the
// latest crop only and is rewritten at most limit times per session, so busy
// slots cannot starve the others.
// It is safe for concurrent use.
type Dumper struct {
	mu      sync.Mutex
	root    string
	session string
	limit   int
	written int
	perKey  map[string]int
	logger  *slog.Logger
}

// NewDumper starts a dump session under dir. A limit <= 0 means unlimited.
func NewDumper(dir string, limit int, logger *slog.Logger) *Dumper {
	return &Dumper{root: dir, session: uuid.NewString(), limit: limit, perKey: map[string]int{}, logger: logger}
}

// Session returns the session id.
func (d *Dumper) Session() string { return d.session }

// Dir returns the session directory.
func (d *Dumper) Dir() string { return filepath.Join(d.root, d.session) }

// Dump writes img for (kind, key), replacing any earlier crop for that key.
func (d *Dumper) Dump(kind, key string, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	kind, key = sanitize(kind), sanitize(key)
	id := kind + "/" + key
	if d.limit > 0 && d.perKey[id] >= d.limit {
		return ErrDumpLimit
	}
	dir := filepath.Join(d.Dir(), kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("dump mkdir: %w", err)
	}
	path := filepath.Join(dir, key+".png")
	if err := imaging.Save(img, path); err != nil {
		if d.logger != nil {
			d.logger.Error("debug.dump", "path", path, "error", err)
		}
		return fmt.Errorf("dump save: %w", err)
	}
	d.written++
	d.perKey[id]++
	return nil
}

// Written returns the number of files written in this session.
func (d *Dumper) Written() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.written
}

// Clear removes the session directory and restores the dump budget.
func (d *Dumper) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	files := d.written
	d.written = 0
	clear(d.perKey)
	size := dirSize(d.Dir())
	if err := os.RemoveAll(d.Dir()); err != nil {
		return fmt.Errorf("dump clear: %w", err)
	}
	if d.logger != nil && files > 0 {
		d.logger.Info("debug.dump.clear", "dir", d.Dir(), "files", files, "size", humanize.Bytes(size))
	}
	return nil
}

func dirSize(dir string) uint64 {
	var total uint64
	_ = filepath.WalkDir(dir, func(_ string, e os.DirEntry, err error) error {
		if err != nil || e.IsDir() {
			return nil
		}
		if info, err := e.Info(); err == nil {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
	if s == "" {
		return "_"
	}
	return s
}
