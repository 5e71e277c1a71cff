// Package workflow loads workflow files and batch data tables for playback.
package workflow

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/ptrgiang/automation-studio/internal/model"
)

// Workflow is a named, ordered action sequence as saved by the editor.
type Workflow struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description,omitempty"`
	Actions     []model.Step `json:"actions" validate:"required,min=1"`
}

var validate = validator.New()

// Load reads and validates a workflow file.
func Load(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow file: %w", err)
	}

	var wf Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse workflow file: %w", err)
	}
	if err := validate.Struct(&wf); err != nil {
		return nil, fmt.Errorf("invalid workflow %q: %w", path, err)
	}
	return &wf, nil
}

// LoadRows reads a batch data table from a CSV file. The first record is the
// header naming the substitution columns; every following record becomes one
// row. Short records leave their trailing columns empty.
func LoadRows(path string) ([]model.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch data: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse batch data: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("batch data %q has no header row", path)
	}

	header := records[0]
	rows := make([]model.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(model.Row, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			} else {
				row[column] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
