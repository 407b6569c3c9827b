package journal

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"time"
)

// CompressOlder gzips journal and digest files last modified before the
// retention window and removes the originals. It returns how many files were
// compressed. Unreadable files are skipped.
func CompressOlder(dir string, retentionDays int, now time.Time) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	n := 0
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case ".jsonl", ".csv":
		default:
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		// a previous run compressed it but failed to remove the original
		if archiveMatches(gz, info.Size()) {
			_ = os.Remove(p)
			return nil
		}
		if gzipFile(p, gz) == nil {
			_ = os.Remove(p)
			n++
		}
		return nil
	})
	return n, err
}

// archiveMatches reports whether gz is a readable gzip stream that
// inflates to exactly size bytes.
func archiveMatches(gz string, size int64) bool {
	f, err := os.Open(gz)
	if err != nil {
		return false
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		return false
	}
	n, err := io.Copy(io.Discard, gr)
	if err != nil {
		return false
	}
	return gr.Close() == nil && n == size
}

// gzipFile writes src to a temp file next to dst and renames it into place,
// so dst is either absent, stale, or complete.
func gzipFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := out.Name()
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
		}
	}()

	gw := gzip.NewWriter(out)
	if _, err = io.Copy(gw, in); err != nil {
		return err
	}
	if err = gw.Close(); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
