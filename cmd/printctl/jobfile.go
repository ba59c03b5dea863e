// cmd/printctl/jobfile.go
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// jobFile is a print job read from disk
type jobFile struct {
	Commands []map[string]interface{} `json:"commands" yaml:"commands"`
	Charset  string                   `json:"charset" yaml:"charset"`
}

// readJobFile loads a JSON or YAML job. A bare list is taken as the command
// list of a job without charset.
func readJobFile(path string) (*jobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	var job *jobFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		job, err = decodeJSONJob(data)
	case ".yaml", ".yml":
		job, err = decodeYAMLJob(data)
	default:
		return nil, fmt.Errorf("unsupported job file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	if len(job.Commands) == 0 {
		return nil, fmt.Errorf("job file %s has no commands", filepath.Base(path))
	}
	return job, nil
}

func decodeJSONJob(data []byte) (*jobFile, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var commands []map[string]interface{}
		if err := json.Unmarshal(trimmed, &commands); err != nil {
			return nil, err
		}
		return &jobFile{Commands: commands}, nil
	}

	var job jobFile
	if err := json.Unmarshal(trimmed, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func decodeYAMLJob(data []byte) (*jobFile, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return &jobFile{}, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var commands []map[string]interface{}
		if err := node.Content[0].Decode(&commands); err != nil {
			return nil, err
		}
		return &jobFile{Commands: commands}, nil
	}

	var job jobFile
	if err := node.Content[0].Decode(&job); err != nil {
		return nil, err
	}
	return &job, nil
}
