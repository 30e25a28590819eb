package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/model"
)

// CSVRepository keeps each table as <Dir>/<name>.csv with one header row.
type CSVRepository struct {
	Dir string
}

func (r *CSVRepository) path(name string) string {
	return filepath.Join(r.Dir, name+".csv")
}

// Save writes the table to a temp file and renames it into place, so readers
// never see a half-written table.
func (r *CSVRepository) Save(ctx context.Context, t *model.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.Dir, "."+t.Name+"-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Columns); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", t.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path(t.Name))
}

func (r *CSVRepository) Load(ctx context.Context, name string) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.NewTableNotFound(name)
		}
		return nil, err
	}
	defer f.Close()

	rd := csv.NewReader(f)
	header, err := rd.Read()
	if err != nil {
		if err == io.EOF {
			return nil, appErrors.NewSchemaError(name, "", "missing header row")
		}
		return nil, err
	}
	rows, err := rd.ReadAll()
	if err != nil {
		return nil, appErrors.NewSchemaError(name, "", err.Error())
	}
	return &model.Table{Name: name, Columns: header, Rows: rows}, nil
}

var _ TableRepositoryInterface = (*CSVRepository)(nil)
