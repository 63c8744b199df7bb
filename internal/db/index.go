package db

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// IndexFieldType enumerates the indexed field kinds.
type IndexFieldType int

const (
	// IndexFieldNumeric supports range filters.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag supports exact and membership filters.
	IndexFieldTag
)

func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldNumeric:
		return "NUMERIC"
	case IndexFieldTag:
		return "TAG"
	default:
		return "UNKNOWN"
	}
}

// IndexField is one field of an index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// TagSeparator splits a tag field into several tags. Empty means ",".
	TagSeparator     string
	TagCaseSensitive bool

	// Sortable numeric fields can order results.
	Sortable bool
}

// IndexDefinition is an index over hashes whose keys start with one of Prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

var identifier = regexp.MustCompile(`^[A-Za-z0-9_:-]+$`)

// Validate checks that the definition can be created.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !identifier.MatchString(idx.Name) {
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i, f := range idx.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.Type {
		case IndexFieldNumeric:
		case IndexFieldTag:
			if f.Sortable {
				return fmt.Errorf("tag field %q cannot be sortable", f.Name)
			}
		default:
			return fmt.Errorf("field %q: unknown type", f.Name)
		}
	}
	return nil
}

// Field looks a schema field up by name.
func (idx *IndexDefinition) Field(name string) (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return IndexField{}, false
}

// CreateArgs renders the definition as FT.CREATE arguments.
func (idx *IndexDefinition) CreateArgs() ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name, "ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")

	for _, f := range idx.Fields {
		args = append(args, f.Name, f.Type.String())
		if f.Type == IndexFieldTag {
			if f.TagSeparator != "" {
				args = append(args, "SEPARATOR", f.TagSeparator)
			}
			if f.TagCaseSensitive {
				args = append(args, "CASESENSITIVE")
			}
		}
		if f.Sortable {
			args = append(args, "SORTABLE")
		}
	}
	return args, nil
}
