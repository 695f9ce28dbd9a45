package emit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"xfer-generator/internal/walk"
)

// Digest folds the instruction streams of the given blueprints into a
// stable content hash. Two walks producing the same routines share a
// digest, regardless of request order.
func Digest(blueprints []*walk.Blueprint) string {
	lines := make([]string, 0, len(blueprints))

	for _, b := range blueprints {
		var sb strings.Builder
		sb.WriteString(b.Triple.String())

		for _, instr := range b.Instructions {
			fmt.Fprintf(&sb, ";%s:%s/%s/%s", instr.Kind, instr.Member, instr.As, instr.Handler)
			sb.WriteString("|" + instr.Stmt)
			sb.WriteString("|" + instr.PresentExpr + "|" + instr.ArgExpr + "|" + instr.AssignStmt)
			sb.WriteString("|" + instr.CollPresentExpr + "|" + instr.CollExpr)
			sb.WriteString("|" + instr.ClearStmt + "|" + instr.AppendStmt)

			if instr.Nested != nil {
				sb.WriteString("|>" + instr.Nested.Triple.String())
			}
		}

		lines = append(lines, sb.String())
	}

	// Request order must not change the digest.
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint extends a blueprint digest with the parts of the
// emitter configuration that change the rendered text, giving the
// artifact cache key.
func (cfg Config) Fingerprint(digest string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n%s\n%s\n%v", digest, cfg.PackageName, cfg.Filename, cfg.GenerateComments)

	for _, imp := range cfg.Imports {
		fmt.Fprintf(h, "\n%s", imp)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Cache is a content-addressed store for emitted files, so repeated
// runs over an unchanged model skip formatting entirely.
type Cache struct {
	dir string
}

// NewCache returns a cache rooted at dir. An empty dir disables
// caching.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) path(digest string) string {
	return filepath.Join(c.dir, digest+".go")
}

// Get returns the cached artifact for a digest.
func (c *Cache) Get(digest string) ([]byte, bool) {
	if c.dir == "" {
		return nil, false
	}

	content, err := os.ReadFile(c.path(digest))
	if err != nil {
		return nil, false
	}

	return content, true
}

// Put stores an artifact under its digest.
func (c *Cache) Put(digest string, content []byte) error {
	if c.dir == "" {
		return nil
	}

	if err := os.MkdirAll(c.dir, dirPerm); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	return os.WriteFile(c.path(digest), content, filePerm)
}
