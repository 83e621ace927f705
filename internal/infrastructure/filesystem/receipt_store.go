package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"kilometers.ai/bdv-viewer/internal/core/domain/install"
)

// ReceiptStore keeps the install receipt as YAML inside the app directory.
type ReceiptStore struct{}

// NewReceiptStore creates a new receipt store
func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{}
}

// Save writes the receipt, replacing any previous one.
func (s *ReceiptStore) Save(appDir string, receipt install.Receipt) error {
	data, err := yaml.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}
	path := filepath.Join(appDir, install.ReceiptFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write receipt: %w", err)
	}
	return nil
}

// Load reads the receipt from appDir.
func (s *ReceiptStore) Load(appDir string) (install.Receipt, error) {
	data, err := os.ReadFile(filepath.Join(appDir, install.ReceiptFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return install.Receipt{}, install.ErrNotInstalled
		}
		return install.Receipt{}, fmt.Errorf("read receipt: %w", err)
	}
	var receipt install.Receipt
	if err := yaml.Unmarshal(data, &receipt); err != nil {
		return install.Receipt{}, fmt.Errorf("decode receipt: %w", err)
	}
	return receipt, nil
}

// Remove deletes the receipt; a missing receipt is not an error.
func (s *ReceiptStore) Remove(appDir string) error {
	err := os.Remove(filepath.Join(appDir, install.ReceiptFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove receipt: %w", err)
	}
	return nil
}
