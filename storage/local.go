package storage

import (
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes blobs under a single root directory and serves them
// under baseURL. URLs that resolve outside the root are refused.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{root: abs, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStorage) Store(name string, data []byte) (string, error) {
	path, err := s.resolve(s.baseURL + "/" + name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return s.baseURL + "/" + name, nil
}

func (s *LocalStorage) Read(url string) ([]byte, error) {
	path, err := s.resolve(url)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (s *LocalStorage) Delete(url string) (bool, error) {
	path, err := s.resolve(url)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// resolve maps a public URL back to an absolute path inside the root. This
// is the defense against a corrupted or malicious stored path.
func (s *LocalStorage) resolve(url string) (string, error) {
	rel := strings.TrimPrefix(url, s.baseURL)
	rel = strings.TrimPrefix(rel, "/")
	path := filepath.Join(s.root, filepath.FromSlash(rel))
	if path != s.root && !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return path, nil
}
