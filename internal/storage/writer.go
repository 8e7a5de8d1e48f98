package storage

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"
)

// SaveDataset persists one snapshot under dir in all three formats:
// <base>.csv, <base>.xlsx and <base>.db (table named by table). Re-saving
// fully overwrites the previous snapshot in every format.
func SaveDataset(dir, base, table string, ds *Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}

	csvPath := filepath.Join(dir, base+".csv")
	if err := writeCSV(csvPath, ds); err != nil {
		return err
	}
	slog.Info("[Storage] Data saved to CSV", slog.String("path", csvPath))

	xlsxPath := filepath.Join(dir, base+".xlsx")
	if err := writeXLSX(xlsxPath, ds); err != nil {
		return err
	}
	slog.Info("[Storage] Data saved to Excel", slog.String("path", xlsxPath))

	dbPath := filepath.Join(dir, base+".db")
	if err := writeSQLite(dbPath, table, ds); err != nil {
		return err
	}
	slog.Info("[Storage] Data saved to SQLite database", slog.String("path", dbPath))

	return nil
}

// SaveCSV persists one snapshot as CSV only; the combined and aggregated
// datasets ship in this single format.
func SaveCSV(dir, base string, ds *Dataset) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, base+".csv")
	if err := writeCSV(path, ds); err != nil {
		return "", err
	}
	return path, nil
}

func writeCSV(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.Columns); err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}

	row := make([]string, len(ds.Columns))
	for _, cells := range ds.Rows {
		for i := range row {
			row[i] = ""
			if i < len(cells) {
				row[i] = cellString(cells[i])
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", path, err)
		}
	}

	w.Flush()
	return w.Error()
}

func writeXLSX(path string, ds *Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]any, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, cells := range ds.Rows {
		row := make([]any, len(cells))
		for j, cell := range cells {
			row[j] = FormatCell(cell)
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSQLite(path, table string, ds *Dataset) error {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer db.Close()

	// Replace semantics: the snapshot table is dropped and rebuilt so a
	// re-run never appends.
	if _, err := db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, table)); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}

	cols := make([]string, len(ds.Columns))
	for i, col := range ds.Columns {
		cols[i] = fmt.Sprintf(`"%s" TEXT`, col)
	}
	if _, err := db.Exec(fmt.Sprintf(`CREATE TABLE "%s" (%s)`, table, strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ds.Columns)), ",")
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO "%s" VALUES (%s)`, table, placeholders))
	if err != nil {
		tx.Rollback()
		return err
	}

	args := make([]any, len(ds.Columns))
	for _, cells := range ds.Rows {
		for i := range args {
			args[i] = nil
			if i < len(cells) && cells[i] != nil {
				args[i] = FormatCell(cells[i])
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.UTC().Format(TimestampFormat)
	default:
		return fmt.Sprintf("%v", val)
	}
}
