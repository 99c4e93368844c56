package trend

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Ledger is the append-only trend store: one CSV per project under a
// common root. Appends are atomic (advisory lock around a
// read-migrate-append-rename sequence) so concurrent invocations never
// interleave partial writes or clobber each other's rows.
type Ledger struct {
	root string
}

// New returns a ledger rooted at dir. The directory is created lazily
// on first append.
func New(dir string) *Ledger {
	return &Ledger{root: dir}
}

// Root returns the ledger root directory.
func (l *Ledger) Root() string { return l.root }

func (l *Ledger) projectFile(project string) string {
	return filepath.Join(l.root, sanitizeProject(project), "trend.csv")
}

// sanitizeProject maps a project name onto a safe directory name.
func sanitizeProject(project string) string {
	if project == "" {
		return "default"
	}
	repl := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	return repl.Replace(project)
}

// Rows reads one project's ledger, migrating legacy schemas in memory.
// A missing ledger file yields no rows and no error.
func (l *Ledger) Rows(project string) ([]Row, error) {
	rows, err := readFile(l.projectFile(project))
	if err != nil {
		return nil, fmt.Errorf("reading ledger for %s: %w", project, err)
	}
	return rows, nil
}

// AllRows reads every project ledger under the root, in file order per
// project. Unreadable project directories are skipped.
func (l *Ledger) AllRows() ([]Row, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ledger root: %w", err)
	}

	var all []Row
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		rows, err := readFile(filepath.Join(l.root, e.Name(), "trend.csv"))
		if err != nil {
			continue
		}
		all = append(all, rows...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date < all[j].Date
	})
	return all, nil
}

// Append adds exactly one row to the project's ledger. Prior rows are
// re-emitted in the current schema but their values are never changed
// or dropped; the new file replaces the old one via rename so readers
// never observe a partial write.
func (l *Ledger) Append(row Row) error {
	dir := filepath.Dir(l.projectFile(row.Project))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	unlock, err := acquireLock(filepath.Join(dir, ".trend.lock"))
	if err != nil {
		return fmt.Errorf("locking ledger: %w", err)
	}
	defer unlock()

	path := l.projectFile(row.Project)
	rows, err := readFile(path)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}
	rows = append(rows, row)

	return writeFile(path, rows)
}

func readFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // legacy schemas have fewer columns
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return migrateRecords(records), nil
}

func writeFile(path string, rows []Row) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".trend-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		_ = tmp.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.record()); err != nil {
			_ = tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// lockStaleAfter bounds how long a crashed invocation can wedge the
// ledger before its lock file is reclaimed.
const lockStaleAfter = 10 * time.Second

// acquireLock takes an advisory lock via exclusive file creation,
// retrying briefly and reclaiming stale locks from crashed processes.
func acquireLock(path string) (func(), error) {
	deadline := time.Now().Add(5 * time.Second)
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}

		if info, statErr := os.Stat(path); statErr == nil &&
			time.Since(info.ModTime()) > lockStaleAfter {
			_ = os.Remove(path)
			continue
		}

		if time.Now().After(deadline) {
			return nil, errors.New("ledger locked by another process")
		}
		time.Sleep(25 * time.Millisecond)
	}
}
