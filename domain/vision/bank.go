package vision

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// Template is one labeled bitmap of a bank.
type Template struct {
	Label string
	Path  string
	Size  image.Point
	pc    *templatePrecomp
}

// Bank is the set of templates a classifier domain matches against for one
// aspect bucket. Agnostic is set when the bucket had no templates of its own.
type Bank struct {
	Dir       string
	Bucket    Bucket
	Agnostic  bool
	Templates []Template
}

// Len returns the number of usable templates.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Templates)
}

// Labels returns the distinct labels in load order.
func (b *Bank) Labels() []string {
	if b == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, t := range b.Templates {
		if !seen[t.Label] {
			seen[t.Label] = true
			out = append(out, t.Label)
		}
	}
	return out
}

// NewBank builds an in-memory bank from labeled images. Used for banks that do
// not come from disk and by tests.
func NewBank(bucket Bucket, labeled map[string][]image.Image) *Bank {
	labels := make([]string, 0, len(labeled))
	for l := range labeled {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	b := &Bank{Bucket: bucket}
	for _, l := range labels {
		for i, img := range labeled[l] {
			pc := newTemplatePrecomp(img)
			if pc == nil {
				continue
			}
			b.Templates = append(b.Templates, Template{
				Label: l,
				Path:  fmt.Sprintf("mem:%s/%d", l, i),
				Size:  image.Pt(pc.W, pc.H),
				pc:    pc,
			})
		}
	}
	return b
}

type bankFile struct {
	path  string
	label string
	tag   string
}

// LoadBank reads the templates under dir for bucket. Two layouts are accepted:
// dir/<label>/*.png (label from the directory) and dir/*.png (label from the file
// stem). Aspect tags are taken from a dir/<tag>/ component or a _<tag> stem
// suffix. If no file carries the bucket's tag the untagged files are used, and
// if there are none of those either, every file is.
func LoadBank(dir string, bucket Bucket) (*Bank, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return &Bank{Dir: dir, Bucket: bucket}, err
	}
	if !info.IsDir() {
		return &Bank{Dir: dir, Bucket: bucket}, fmt.Errorf("template bank %s: not a directory", dir)
	}
	var files []bankFile
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".png") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, classifyBankFile(path, rel))
		return nil
	})
	if err != nil {
		return &Bank{Dir: dir, Bucket: bucket}, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })

	want := bucket.Tag()
	selected := filterFiles(files, func(f bankFile) bool { return f.tag == want })
	agnostic := false
	if len(selected) == 0 {
		agnostic = true
		selected = filterFiles(files, func(f bankFile) bool { return f.tag == "" })
		if len(selected) == 0 {
			selected = files
		}
	}

	bank := &Bank{Dir: dir, Bucket: bucket, Agnostic: agnostic}
	var errs []error
	for _, f := range selected {
		img, err := imaging.Open(f.path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		pc := newTemplatePrecomp(img)
		if pc == nil {
			errs = append(errs, fmt.Errorf("template %s: empty image", f.path))
			continue
		}
		bank.Templates = append(bank.Templates, Template{
			Label: f.label,
			Path:  f.path,
			Size:  image.Pt(pc.W, pc.H),
			pc:    pc,
		})
	}
	return bank, errors.Join(errs...)
}

func classifyBankFile(path, rel string) bankFile {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	stem := strings.TrimSuffix(parts[len(parts)-1], filepath.Ext(path))
	f := bankFile{path: path}
	var dirs []string
	for _, p := range parts[:len(parts)-1] {
		if _, ok := tagBucket(strings.ToLower(p)); ok {
			f.tag = strings.ToLower(p)
			continue
		}
		dirs = append(dirs, p)
	}
	lower := strings.ToLower(stem)
	for _, b := range Buckets {
		suffix := "_" + b.Tag()
		if strings.HasSuffix(lower, suffix) {
			if f.tag == "" {
				f.tag = b.Tag()
			}
			stem = stem[:len(stem)-len(suffix)]
			break
		}
	}
	if len(dirs) > 0 {
		f.label = dirs[0]
	} else {
		f.label = stem
	}
	return f
}

func filterFiles(in []bankFile, keep func(bankFile) bool) []bankFile {
	var out []bankFile
	for _, f := range in {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

type bankKey struct {
	dir    string
	bucket Bucket
}

// BankCache loads each (directory, bucket) bank once and shares it with every
// caller. It is constructed at startup and handed to the components that
// classify regions.
type BankCache struct {
	root   string
	logger *slog.Logger
	mu     sync.Mutex
	banks  map[bankKey]*Bank
}

// NewBankCache creates a cache resolving relative domain paths against root.
func NewBankCache(root string, logger *slog.Logger) *BankCache {
	return &BankCache{root: root, logger: logger, banks: map[bankKey]*Bank{}}
}

// Bank returns the bank for domain (a path relative to the cache root, e.g.
// "sigils" or "buttons/pass") and bucket. Load failures are logged and yield an
// empty bank, which never matches.
func (c *BankCache) Bank(domain string, bucket Bucket) *Bank {
	dir := domain
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.root, filepath.FromSlash(domain))
	}
	key := bankKey{dir: dir, bucket: bucket}
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.banks[key]; ok {
		return b
	}
	b, err := LoadBank(dir, bucket)
	if err != nil && c.logger != nil {
		c.logger.Warn("vision.bank", "dir", dir, "bucket", string(bucket), "loaded", b.Len(), "error", err)
	} else if b.Agnostic && c.logger != nil {
		c.logger.Debug("vision.bank.fallback", "dir", dir, "bucket", string(bucket), "loaded", b.Len())
	}
	c.banks[key] = b
	return b
}

// Put installs a prebuilt bank, replacing any cached one.
func (c *BankCache) Put(domain string, bucket Bucket, b *Bank) {
	dir := domain
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.root, filepath.FromSlash(domain))
	}
	c.mu.Lock()
	c.banks[bankKey{dir: dir, bucket: bucket}] = b
	c.mu.Unlock()
}
