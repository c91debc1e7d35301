// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package maven

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Project is the subset of a POM needed to place an artifact.
type Project struct {
	GroupID    string  `xml:"groupId"`
	ArtifactID string  `xml:"artifactId"`
	Version    string  `xml:"version"`
	Packaging  string  `xml:"packaging"`
	Parent     *Parent `xml:"parent"`
}

// Parent is the parent reference of a POM.
type Parent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// POMError reports a POM that could not be read as a project model.
type POMError struct {
	Path string
	Err  error
}

func (e *POMError) Error() string {
	return "building model from POM " + e.Path + ": " + e.Err.Error()
}

func (e *POMError) Unwrap() error { return e.Err }

// ParsePOM decodes a project model. Parent coordinates, when declared,
// replace the project's group and version.
func ParsePOM(r io.Reader) (*Project, error) {
	var p Project
	if err := xml.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrap(err, "decoding project")
	}
	if p.Parent != nil {
		p.GroupID = p.Parent.GroupID
		p.Version = p.Parent.Version
	}
	if p.Packaging == "" {
		p.Packaging = "jar"
	}
	switch {
	case p.GroupID == "":
		return nil, errors.New("missing groupId")
	case p.ArtifactID == "":
		return nil, errors.New("missing artifactId")
	case p.Version == "":
		return nil, errors.New("missing version")
	}
	return &p, nil
}

// NewModule builds the module described by p for file. A module that is not
// itself a POM carries pomFile as an attachment.
func NewModule(p *Project, pomFile, file string) *Module {
	ext := strings.ToLower(p.Packaging)
	if ext == "maven-archetype" {
		ext = "jar"
	}
	m := &Module{
		GroupID:    p.GroupID,
		ArtifactID: p.ArtifactID,
		Version:    p.Version,
		Extension:  ext,
		File:       file,
	}
	if !m.IsPOM() && pomFile != "" {
		m.Attach(pomFile, "")
	}
	return m
}
