package receipt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var (
	ErrNotFound      = errors.New("receipt not found")
	ErrInvalidNumber = errors.New("invalid order number")
)

var orderNumberRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Store keeps one text file per order under Dir.
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipts dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func FileName(number string) string {
	return "receipt_" + number + ".txt"
}

func (s *Store) path(number string) (string, error) {
	if !orderNumberRe.MatchString(number) {
		return "", fmt.Errorf("%w: %q", ErrInvalidNumber, number)
	}
	return filepath.Join(s.Dir, FileName(number)), nil
}

// Save writes the receipt through a temp file and a rename, so readers never
// see a partial document.
func (s *Store) Save(number string, body []byte) error {
	dst, err := s.path(number)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.Dir, ".receipt-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write receipt: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close receipt: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod receipt: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename receipt: %w", err)
	}
	return nil
}

func (s *Store) Open(number string) ([]byte, error) {
	p, err := s.path(number)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, number)
	}
	return body, err
}
