package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/Thomsch/export-lltc4j/internal/usecase/export"
)

// ReadCommitList loads an exported commit index back into memory.
// Columns are resolved by header name so older three-column exports
// (without project_name) still load, with the project name left empty.
func ReadCommitList(path string) ([]export.CommitRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open commit list: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}
	for _, required := range []string{"vcs_url", "commit_hash", "parent_hash"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, required)
		}
	}

	var rows []export.CommitRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		row := export.CommitRow{
			VCSURL:     record[columns["vcs_url"]],
			CommitHash: record[columns["commit_hash"]],
			ParentHash: record[columns["parent_hash"]],
		}
		if i, ok := columns["project_name"]; ok {
			row.ProjectName = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadGroundTruthGroups returns the group column of a truth.csv file.
func ReadGroundTruthGroups(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ground truth: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	groupIndex := -1
	for i, name := range header {
		if name == "group" {
			groupIndex = i
			break
		}
	}
	if groupIndex < 0 {
		return nil, fmt.Errorf("%s: missing column %q", path, "group")
	}

	var groups []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		groups = append(groups, record[groupIndex])
	}
	return groups, nil
}
