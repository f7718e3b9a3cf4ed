// Package sink persists element-set batches as three-line text files and reads
// them back for verification.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/signalsfoundry/tle-generator/core"
	"github.com/signalsfoundry/tle-generator/model"
)

// FileName returns the output file name for a constellation system.
func FileName(system string) string {
	return "TLEs_" + system + ".txt"
}

// Write emits title, line 1 and line 2 of every record, each newline
// terminated, in catalog order.
func Write(w io.Writer, batch *model.Batch) error {
	if batch.Len() == 0 {
		return core.ErrEmptyBatch
	}
	bw := bufio.NewWriter(w)
	for _, rec := range batch.Records {
		for _, line := range []string{rec.TitleLine, rec.Line1, rec.Line2} {
			if _, err := bw.WriteString(line); err != nil {
				return fmt.Errorf("write element set %d: %w", rec.CatalogNumber, err)
			}
			if err := bw.WriteByte('\n'); err != nil {
				return fmt.Errorf("write element set %d: %w", rec.CatalogNumber, err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush element sets: %w", err)
	}
	return nil
}

// WriteFile writes batch to dir/FileName(batch.SystemName). The file is
// staged in dir and renamed into place, so readers never see a partial batch.
func WriteFile(dir string, batch *model.Batch) (path string, err error) {
	if batch.Len() == 0 {
		return "", core.ErrEmptyBatch
	}
	if strings.ContainsAny(batch.SystemName, `/\`) {
		return "", fmt.Errorf("system name %q is not a valid file name component", batch.SystemName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path = filepath.Join(dir, FileName(batch.SystemName))

	tmp, err := os.CreateTemp(dir, ".tlegen-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, batch); err != nil {
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename into %s: %w", path, err)
	}
	return path, nil
}

// Read parses title/line1/line2 triplets. Blank lines between element sets
// are ignored. The batch system name is taken from the first title, up to
// " Plane ".
func Read(r io.Reader) (*model.Batch, error) {
	sc := bufio.NewScanner(r)
	var lines []string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read element sets: %w", err)
	}
	if len(lines) == 0 {
		return nil, core.ErrEmptyBatch
	}
	if len(lines)%3 != 0 {
		return nil, fmt.Errorf("element set file has %d lines, not a multiple of 3", len(lines))
	}

	batch := &model.Batch{}
	for i := 0; i < len(lines); i += 3 {
		rec, err := parseRecord(lines[i], lines[i+1], lines[i+2])
		if err != nil {
			return nil, fmt.Errorf("element set at line %d: %w", i+1, err)
		}
		batch.Records = append(batch.Records, rec)
	}

	first := batch.Records[0]
	batch.SystemName = first.TitleLine
	if i := strings.LastIndex(first.TitleLine, " Plane "); i >= 0 {
		batch.SystemName = first.TitleLine[:i]
	}
	epoch, err := core.EpochFromLine1(first.Line1)
	if err != nil {
		return nil, err
	}
	batch.Epoch = epoch
	return batch, nil
}

func parseRecord(title, line1, line2 string) (model.TleRecord, error) {
	if len(line1) < 32 || line1[0] != '1' {
		return model.TleRecord{}, fmt.Errorf("expected line 1, got %q", line1)
	}
	if len(line2) < 7 || line2[0] != '2' {
		return model.TleRecord{}, fmt.Errorf("expected line 2, got %q", line2)
	}
	catalog, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
	if err != nil {
		return model.TleRecord{}, fmt.Errorf("invalid catalog number %q: %w", line1[2:7], err)
	}
	yy, err := strconv.Atoi(strings.TrimSpace(line1[18:20]))
	if err != nil {
		return model.TleRecord{}, fmt.Errorf("invalid epoch year %q: %w", line1[18:20], err)
	}
	day, err := strconv.ParseFloat(strings.TrimSpace(line1[20:32]), 64)
	if err != nil {
		return model.TleRecord{}, fmt.Errorf("invalid epoch day %q: %w", line1[20:32], err)
	}
	return model.TleRecord{
		CatalogNumber:      catalog,
		EpochYearTwoDigit:  yy,
		EpochDayFractional: day,
		TitleLine:          title,
		Line1:              line1,
		Line2:              line2,
	}, nil
}
