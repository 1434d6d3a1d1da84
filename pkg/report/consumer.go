package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReadReport loads the index and every flow detail it references.
// Missing detail files are skipped; the index stays authoritative for
// status even when a detail write lost a race with the reader.
func ReadReport(reportDir string) (*Index, []FlowDetail, error) {
	index, err := ReadIndex(reportDir)
	if err != nil {
		return nil, nil, err
	}

	flows := make([]FlowDetail, 0, len(index.Flows))
	for _, entry := range index.Flows {
		detail, err := ReadFlowDetail(reportDir, entry.DataFile)
		if err != nil {
			continue
		}
		flows = append(flows, *detail)
	}

	return index, flows, nil
}

// ReadIndex loads report.json from the report directory.
func ReadIndex(reportDir string) (*Index, error) {
	path := filepath.Join(reportDir, "report.json")
	data, err := os.ReadFile(path) //#nosec G304 -- path is runner-controlled
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return &index, nil
}

// ReadFlowDetail loads one flow detail file, addressed the way the
// index references it (relative to the report directory).
func ReadFlowDetail(reportDir, dataFile string) (*FlowDetail, error) {
	path := filepath.Join(reportDir, dataFile)
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from the index we wrote
	if err != nil {
		return nil, fmt.Errorf("read flow detail: %w", err)
	}

	var detail FlowDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("parse flow detail: %w", err)
	}
	return &detail, nil
}
