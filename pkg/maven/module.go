// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package maven turns an unpacked SDK tree into Maven artifacts and
// publishes them to local or remote repositories.
package maven

import (
	"path"
	"sort"
	"strings"
)

// Artifact is a file attached to a Module under a classifier.
type Artifact struct {
	Classifier string `yaml:"classifier,omitempty"`
	Extension  string `yaml:"extension"`
	// File is relative to the tree the module was collected from.
	File string `yaml:"file"`
}

// Module is a main artifact together with its attachments.
type Module struct {
	GroupID     string     `yaml:"groupId"`
	ArtifactID  string     `yaml:"artifactId"`
	Version     string     `yaml:"version"`
	Extension   string     `yaml:"extension"`
	File        string     `yaml:"file"`
	Attachments []Artifact `yaml:"attachments,omitempty"`
}

// String returns the coordinates as group:artifact:extension:version.
func (m *Module) String() string {
	return strings.Join([]string{m.GroupID, m.ArtifactID, m.Extension, m.Version}, ":")
}

// IsPOM reports whether the module is a POM-only module.
func (m *Module) IsPOM() bool {
	return strings.EqualFold(m.Extension, "pom")
}

// Attach adds file under classifier, its extension taken from the file name.
// Attaching the same classifier and extension twice keeps the first.
func (m *Module) Attach(file, classifier string) {
	ext := strings.TrimPrefix(path.Ext(file), ".")
	for _, a := range m.Attachments {
		if a.Classifier == classifier && a.Extension == ext {
			return
		}
	}
	m.Attachments = append(m.Attachments, Artifact{Classifier: classifier, Extension: ext, File: file})
}

// Files lists the main file followed by every attachment as artifacts of
// the module, the main one carrying no classifier.
func (m *Module) Files() []Artifact {
	out := []Artifact{{Extension: m.Extension, File: m.File}}
	return append(out, m.Attachments...)
}

// FileName is the repository file name of a for this module.
func (m *Module) FileName(a Artifact) string {
	name := m.ArtifactID + "-" + m.Version
	if a.Classifier != "" {
		name += "-" + a.Classifier
	}
	return name + "." + a.Extension
}

// Dir is the repository directory of the module, e.g. com/isomorphic/smartgwt/smartgwt-lgpl/4.1.
func (m *Module) Dir() string {
	return path.Join(strings.ReplaceAll(m.GroupID, ".", "/"), m.ArtifactID, m.Version)
}

// Path is the repository path of a for this module.
func (m *Module) Path(a Artifact) string {
	return path.Join(m.Dir(), m.FileName(a))
}

// sortModules orders modules by coordinates and drops later duplicates.
func sortModules(modules []*Module) []*Module {
	sort.SliceStable(modules, func(i, j int) bool { return modules[i].String() < modules[j].String() })
	out := modules[:0]
	for i, m := range modules {
		if i > 0 && m.String() == out[len(out)-1].String() {
			continue
		}
		out = append(out, m)
	}
	return out
}
