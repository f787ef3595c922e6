package records

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// BuiltinPrefix marks a seed reference that names an embedded sample set.
const BuiltinPrefix = "builtin:"

// Common errors for seed loading.
var (
	ErrUnknownBuiltin = errors.New("unknown builtin seed")
	ErrInvalidSeed    = errors.New("invalid seed data")
	ErrEmptySeed      = errors.New("seed file is empty")
)

//go:embed samples/*.yaml
var samples embed.FS

// Builtins returns the names of the embedded sample sets.
func Builtins() []string {
	entries, _ := fs.ReadDir(samples, "samples")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// LoadSeed loads records from a seed reference: either "builtin:<name>" for
// an embedded sample set, or a path to a YAML (.yaml, .yml) or JSON file.
func LoadSeed(ref string) ([]Record, error) {
	if name, ok := strings.CutPrefix(ref, BuiltinPrefix); ok {
		data, err := samples.ReadFile(path.Join("samples", name+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBuiltin, name)
		}
		return DecodeYAML(data)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySeed, ref)
	}

	switch strings.ToLower(filepath.Ext(ref)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}

// DecodeJSON decodes a JSON array of objects into records.
func DecodeJSON(data []byte) ([]Record, error) {
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

// DecodeYAML decodes a YAML sequence of mappings into records, keeping the
// key order of each mapping.
func DecodeYAML(data []byte) ([]Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if len(doc.Content) == 0 {
		return []Record{}, nil
	}

	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: expected a list of records (line %d)", ErrInvalidSeed, seq.Line)
	}

	recs := make([]Record, 0, len(seq.Content))
	for _, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: record at line %d is not a mapping", ErrInvalidSeed, item.Line)
		}
		r := Record{}
		for i := 0; i+1 < len(item.Content); i += 2 {
			var value any
			if err := item.Content[i+1].Decode(&value); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSeed, item.Content[i+1].Line, err)
			}
			r.set(item.Content[i].Value, value)
		}
		recs = append(recs, r)
	}
	return recs, nil
}
