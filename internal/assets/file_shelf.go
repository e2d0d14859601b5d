package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"wxhm/internal/models"
	"wxhm/internal/providers"
	"wxhm/internal/structures"
)

type FileShelfInterface interface {
	List() ([]string, error)
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
	Open(filename string) (*os.File, error)
}

// FileShelf holds admin-uploaded files served by base name, such as
// platform domain verification files.
type FileShelf struct {
	dir    string
	logger providers.Logger
}

func NewFileShelf(conf *structures.Config, logger providers.Logger) (FileShelfInterface, error) {
	dir, err := filepath.Abs(conf.Storage.FilesDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create files dir: %w", err)
	}
	return &FileShelf{dir: dir, logger: logger}, nil
}

func safeBaseName(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "" || name == "." || name == "/" || name == ".." || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: invalid file name %q", models.ErrValidation, filename)
	}
	return name, nil
}

func (fsh *FileShelf) List() ([]string, error) {
	entries, err := os.ReadDir(fsh.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list files: %w", models.ErrTransientIO, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func (fsh *FileShelf) Save(filename string, data []byte) (string, error) {
	name, err := safeBaseName(filename)
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(filepath.Join(fsh.dir, name), data); err != nil {
		return "", fmt.Errorf("%w: save file: %w", models.ErrTransientIO, err)
	}
	fsh.logger.Infof(providers.TypeStorage, "Saved shelf file %s (%d bytes)", name, len(data))
	return name, nil
}

func (fsh *FileShelf) Delete(filename string) error {
	name, err := safeBaseName(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(fsh.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file %q: %w", name, models.ErrNotFound)
		}
		return fmt.Errorf("%w: delete file: %w", models.ErrTransientIO, err)
	}
	fsh.logger.Infof(providers.TypeStorage, "Deleted shelf file %s", name)
	return nil
}

func (fsh *FileShelf) Open(filename string) (*os.File, error) {
	name, err := safeBaseName(filename)
	if err != nil {
		return nil, fmt.Errorf("file %q: %w", filename, models.ErrNotFound)
	}
	f, err := os.Open(filepath.Join(fsh.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %q: %w", name, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: open file: %w", models.ErrTransientIO, err)
	}
	return f, nil
}
