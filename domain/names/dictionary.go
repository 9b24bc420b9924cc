package names

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

type entry struct {
	word    string
	norm    string
	compact string
	tokens  []string
}

// Dictionary is an ordered list of canonical names with their normalized forms.
type Dictionary struct {
	Kind    Kind
	entries []entry
	exact   map[string]int
	spelled map[string]int
}

// NewDictionary builds a dictionary from words. Entries that normalize to
// nothing are skipped. Several spellings may share a normalized form (such as
// "Golem 2" and "Golem 3"); the first one wins the normalized lookup and each
// stays reachable through Spelled.
func NewDictionary(kind Kind, words []string) *Dictionary {
	d := &Dictionary{Kind: kind, exact: make(map[string]int, len(words)), spelled: make(map[string]int, len(words))}
	for _, w := range words {
		w = strings.TrimSpace(w)
		n := Normalize(w)
		if n == "" {
			continue
		}
		key := spelling(w)
		if _, dup := d.spelled[key]; dup {
			continue
		}
		if _, taken := d.exact[n]; !taken {
			d.exact[n] = len(d.entries)
		}
		d.spelled[key] = len(d.entries)
		d.entries = append(d.entries, entry{word: w, norm: n, compact: compact(n), tokens: strings.Fields(n)})
	}
	return d
}

// Spelled returns the entry spelled exactly like raw, ignoring case and
// repeated whitespace.
func (d *Dictionary) Spelled(raw string) (string, bool) {
	if d == nil {
		return "", false
	}
	i, ok := d.spelled[spelling(raw)]
	if !ok {
		return "", false
	}
	return d.entries[i].word, true
}

func spelling(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Words returns the canonical spellings in load order.
func (d *Dictionary) Words() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.word
	}
	return out
}

// LoadDictionary reads a line-delimited word list from path, or every *.txt in
// path when it is a directory. Blank lines and lines starting with '#' are
// ignored.
func LoadDictionary(kind Kind, path string) (*Dictionary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return NewDictionary(kind, nil), err
	}
	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.txt"))
		if err != nil {
			return NewDictionary(kind, nil), err
		}
		sort.Strings(files)
	}
	var words []string
	for _, f := range files {
		w, err := readLines(f)
		if err != nil {
			return NewDictionary(kind, words), fmt.Errorf("read dictionary %s: %w", f, err)
		}
		words = append(words, w...)
	}
	return NewDictionary(kind, words), nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// Store loads each kind's dictionary on first use and keeps it for the life of
// the process.
type Store struct {
	paths  map[Kind]string
	logger *slog.Logger
	mu     sync.Mutex
	dicts  map[Kind]*Dictionary
}

// NewStore maps kinds to dictionary paths.
func NewStore(paths map[Kind]string, logger *slog.Logger) *Store {
	return &Store{paths: paths, logger: logger, dicts: map[Kind]*Dictionary{}}
}

// Put installs an in-memory dictionary for its kind.
func (s *Store) Put(d *Dictionary) {
	s.mu.Lock()
	s.dicts[d.Kind] = d
	s.mu.Unlock()
}

// Get returns the dictionary for kind. A missing or unreadable file yields an
// empty dictionary and a warning; it is not retried.
func (s *Store) Get(kind Kind) *Dictionary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.dicts[kind]; ok {
		return d
	}
	path := s.paths[kind]
	var d *Dictionary
	if path == "" {
		d = NewDictionary(kind, nil)
	} else {
		var err error
		d, err = LoadDictionary(kind, path)
		if err != nil && s.logger != nil {
			level := slog.LevelWarn
			if errors.Is(err, os.ErrNotExist) {
				level = slog.LevelInfo
			}
			s.logger.Log(context.Background(), level, "names.dictionary", "kind", kind.String(), "path", path, "error", err)
		}
	}
	if s.logger != nil {
		s.logger.Debug("names.dictionary.loaded", "kind", kind.String(), "entries", d.Len())
	}
	s.dicts[kind] = d
	return d
}
