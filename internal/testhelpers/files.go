package testhelpers

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

// WriteTree creates the files in root, with paths relative to root using
// forward slashes. The values are the file contents; they may be a string
// or []byte.
func WriteTree(t *testing.T, root string, files map[string]any) {
	t.Helper()
	for name, content := range files {
		fpath := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", name, err)
		}
		var data []byte
		switch c := content.(type) {
		case string:
			data = []byte(c)
		case []byte:
			data = c
		default:
			t.Fatalf("unsupported content type for %s: %T", name, content)
		}
		if err := os.WriteFile(fpath, data, 0600); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

// ListDir returns the sorted names of the entries in dir,
// or nil if dir does not exist.
func ListDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("listing %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// SidecarJSON returns the contents of a sidecar for a photo
// titled title that was taken at ts.
func SidecarJSON(title string, ts time.Time) string {
	return fmt.Sprintf(`{
  "title": %q,
  "photoTakenTime": {"timestamp": "%d", "formatted": %q},
  "geoData": {"latitude": 0.0, "longitude": 0.0, "altitude": 0.0}
}`, title, ts.Unix(), ts.UTC().Format("Jan 2, 2006, 3:04:05 PM UTC"))
}

// ValidateFileData checks that the file at fpath has the expected contents,
// which may be a string, []byte, or io.Reader.
func ValidateFileData(t *testing.T, fpath string, expectedData any, errorMessage string, errorArgs ...any) {
	t.Helper()
	errMsg := fmt.Sprintf(errorMessage, errorArgs...)

	var expectedBytes []byte
	switch exp := expectedData.(type) {
	case string:
		expectedBytes = []byte(exp)
	case []byte:
		expectedBytes = exp
	case io.Reader:
		var err error
		expectedBytes, err = io.ReadAll(exp)
		if err != nil {
			t.Errorf("%s; couldn't read expected data: %v", errMsg, err)
			return
		}
	default:
		t.Errorf("%s; unable to check content with expected data type: %T", errMsg, expectedData)
		return
	}

	actualBytes, err := os.ReadFile(fpath)
	if err != nil {
		t.Errorf("%s; unable to read %s: %v", errMsg, fpath, err)
		return
	}
	if !bytes.Equal(actualBytes, expectedBytes) {
		t.Errorf("%s; file data incorrect, wanted:\n %s\nbut got:\n %s", errMsg, string(expectedBytes), string(actualBytes))
	}
}
