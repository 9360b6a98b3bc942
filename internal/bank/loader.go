package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/typemetry/typemetry/internal/payload"
)

// Pack is one authored directory, decoded but not normalized. Weight tables
// and mapping blocks stay in their raw shape; canonicalizing them is the
// scoring engine's job, not the loader's.
type Pack struct {
	Bank    Bank
	Weights any
	Funcs   any
	Types   any
}

// LoadDir reads an authored package directory. bank.(yaml|yml|json) and
// weights.(yaml|yml|json) are required; funcs.* and types.* are optional
// mapping blocks.
func LoadDir(dir string) (*Pack, error) {
	var p Pack
	if err := readInto(dir, "bank", &p.Bank); err != nil {
		return nil, err
	}
	if err := p.Bank.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	if err := readInto(dir, "weights", &p.Weights); err != nil {
		return nil, err
	}
	if err := readInto(dir, "funcs", &p.Funcs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := readInto(dir, "types", &p.Types); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return &p, nil
}

// Envelope wraps the pack as a single-mode payload envelope. An empty
// version falls back to the bank's own.
func (p *Pack) Envelope(version string, ts int64) *payload.Envelope {
	if version == "" {
		version = p.Bank.Version
	}
	return &payload.Envelope{
		Version: version,
		TS:      ts,
		Weights: map[string]any{p.Bank.Mode: p.Weights},
		Mapping: payload.Mapping{Funcs: p.Funcs, Types: p.Types},
	}
}

func (b Bank) validate() error {
	if strings.TrimSpace(b.Mode) == "" {
		return errors.New("bank: mode is required")
	}
	if len(b.Items) == 0 {
		return errors.New("bank: no items")
	}
	seen := make(map[string]struct{}, len(b.Items))
	for i, it := range b.Items {
		if strings.TrimSpace(it.ID) == "" {
			return fmt.Errorf("bank: item %d has no id", i)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("bank: duplicate item id %q", it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}

// readInto finds stem.(yaml|yml|json) in dir and decodes it. A missing file
// reports fs.ErrNotExist so callers can treat it as optional.
func readInto(dir, stem string, v any) error {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(dir, stem+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		if ext == ".json" {
			if err := json.Unmarshal(data, v); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		}
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("%s.(yaml|yml|json) in %s: %w", stem, dir, fs.ErrNotExist)
}
