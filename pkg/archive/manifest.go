// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ManifestPath is the location of the manifest inside a jar.
const ManifestPath = "META-INF/MANIFEST.MF"

// maxLineBytes is the manifest line limit, excluding the line break.
const maxLineBytes = 72

// Section is an ordered set of manifest attributes.
type Section struct {
	values map[string]string
	// Names in insertion order.
	Names []string
}

// NewSection creates an empty section.
func NewSection() *Section {
	return &Section{values: make(map[string]string)}
}

// Set adds or replaces an attribute, keeping first-insertion order.
func (s *Section) Set(name, value string) {
	if _, ok := s.values[name]; !ok {
		s.Names = append(s.Names, name)
	}
	s.values[name] = value
}

// Get returns the value of name.
func (s *Section) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Manifest is a jar manifest. Only the main section is modelled; per-entry
// sections are not produced by repackaged jars.
type Manifest struct {
	MainSection *Section
}

// NewManifest returns a manifest carrying the mandatory version attribute.
func NewManifest(createdBy string) *Manifest {
	m := &Manifest{MainSection: NewSection()}
	m.MainSection.Set("Manifest-Version", "1.0")
	if createdBy != "" {
		m.MainSection.Set("Created-By", createdBy)
	}
	return m
}

// WriteManifest serializes m with CRLF line endings and 72-byte line wrapping.
func WriteManifest(w io.Writer, m *Manifest) error {
	for _, name := range m.MainSection.Names {
		value, _ := m.MainSection.Get(name)
		if err := writeAttribute(w, name, value); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}

func writeAttribute(w io.Writer, name, value string) error {
	line := name + ": " + value
	for len(line) > maxLineBytes {
		if _, err := io.WriteString(w, line[:maxLineBytes]+"\r\n"); err != nil {
			return err
		}
		line = " " + line[maxLineBytes:]
	}
	_, err := io.WriteString(w, line+"\r\n")
	return err
}

// ParseManifest reads the main section of a manifest.
func ParseManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{MainSection: NewSection()}
	var current string
	flush := func() error {
		if current == "" {
			return nil
		}
		name, value, ok := strings.Cut(current, ":")
		if !ok {
			return errors.Errorf("invalid manifest line (missing colon): %s", current)
		}
		m.MainSection.Set(strings.TrimSpace(name), strings.TrimPrefix(value, " "))
		current = ""
		return nil
	}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case line == "":
			return m, flush()
		case strings.HasPrefix(line, " "):
			if current == "" {
				return nil, errors.New("unexpected continuation line")
			}
			current += line[1:]
		default:
			if err := flush(); err != nil {
				return nil, err
			}
			current = line
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}
	return m, flush()
}
