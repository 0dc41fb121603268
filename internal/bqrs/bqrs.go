// Package bqrs reads decoded BQRS JSON documents: a mapping from table name
// to a tuples list plus column descriptors, as produced by `codeql bqrs
// decode --format=json`. It backs the inspection commands only and is
// independent of the SARIF extraction pipeline.
package bqrs

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Column describes one column of a decoded table.
type Column struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Table is one decoded result table. Rows are kept raw so dumps reproduce
// the original JSON values untouched.
type Table struct {
	Columns []Column          `json:"columns"`
	Tuples  []json.RawMessage `json:"tuples"`
}

// Document is a decoded BQRS JSON file.
type Document struct {
	tables map[string]Table
}

// Load reads and decodes a BQRS JSON document. Top-level values without a
// "tuples" list are not tables and are skipped.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read BQRS JSON file %q: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode BQRS JSON file %q: %w", path, err)
	}

	document := &Document{tables: make(map[string]Table, len(raw))}
	for name, value := range raw {
		var probe struct {
			Tuples *json.RawMessage `json:"tuples"`
		}
		if err := json.Unmarshal(value, &probe); err != nil || probe.Tuples == nil {
			continue
		}

		var table Table
		if err := json.Unmarshal(value, &table); err != nil {
			return nil, fmt.Errorf("failed to decode table %q: %w", name, err)
		}
		document.tables[name] = table
	}
	return document, nil
}

// TableNames returns the table names in sorted order.
func (d *Document) TableNames() []string {
	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table looks up a table by name. The error for a missing table lists the
// available ones.
func (d *Document) Table(name string) (*Table, error) {
	table, ok := d.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q not found, available tables: %s", name, strings.Join(d.TableNames(), ", "))
	}
	return &table, nil
}

// Label renders a column descriptor as "name:kind", falling back to whichever
// part is present.
func (c Column) Label() string {
	base := c.Name
	if base == "" {
		base = c.Kind
	}
	if base == "" {
		return "<col>"
	}
	if c.Kind != "" && c.Name != "" {
		return c.Name + ":" + c.Kind
	}
	return base
}
