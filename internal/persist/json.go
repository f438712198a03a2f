package persist

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/catalogscan/catalogscan/internal/model"
	"golang.org/x/crypto/sha3"
)

// IndexFile is the name of the catalog index inside the output directory.
const IndexFile = "index.json"

// ErrInvalidTermCode is returned for term codes that cannot be used as a
// file name.
var ErrInvalidTermCode = errors.New("invalid term code")

// JSONWriter writes datasets and the index as JSON files in one directory.
type JSONWriter struct {
	dir string

	// indent enables pretty-printed output.
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents output with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter rooted at dir. The directory is
// created on first write.
func NewJSONWriter(dir string, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{dir: dir}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *JSONWriter) Dir() string {
	return w.dir
}

// TermPath returns the dataset path for termCode.
func (w *JSONWriter) TermPath(termCode string) string {
	return filepath.Join(w.dir, termCode+".json")
}

// WriteTerm stores ds as {dir}/{termCode}.json, replacing any previous
// file for the term, and returns the digest of the written bytes.
func (w *JSONWriter) WriteTerm(ds *model.TermDataset, termCode string) (string, error) {
	if termCode == "" || strings.ContainsAny(termCode, `/\.`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTermCode, termCode)
	}
	if ds == nil {
		ds = model.NewTermDataset()
	}
	return w.write(w.TermPath(termCode), ds)
}

// WriteIndex stores the list of produced datasets as {dir}/index.json.
func (w *JSONWriter) WriteIndex(entries []model.IndexEntry) (string, error) {
	if entries == nil {
		entries = []model.IndexEntry{}
	}
	return w.write(filepath.Join(w.dir, IndexFile), entries)
}

// ReadTerm loads a dataset previously written by WriteTerm.
func (w *JSONWriter) ReadTerm(termCode string) (*model.TermDataset, error) {
	data, err := os.ReadFile(w.TermPath(termCode))
	if err != nil {
		return nil, err
	}
	var ds model.TermDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", termCode, err)
	}
	return &ds, nil
}

// ReadIndex loads the index written by WriteIndex.
func (w *JSONWriter) ReadIndex() ([]model.IndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, IndexFile))
	if err != nil {
		return nil, err
	}
	var entries []model.IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return entries, nil
}

func (w *JSONWriter) write(path string, v any) (string, error) {
	var (
		data []byte
		err  error
	)
	if w.indent != "" {
		data, err = json.MarshalIndent(v, "", w.indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return Digest(data), nil
}

// Digest returns the hex-encoded SHA3-256 of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // sync error takes precedence
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
