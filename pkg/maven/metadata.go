// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package maven

import (
	"encoding/xml"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// MetadataFile is the name of the artifact-level repository index.
const MetadataFile = "maven-metadata.xml"

const lastUpdatedLayout = "20060102150405"

// Metadata is the root element of an artifact's maven-metadata.xml.
type Metadata struct {
	XMLName           xml.Name `xml:"metadata"`
	GroupID           string   `xml:"groupId"`
	ArtifactID        string   `xml:"artifactId"`
	Latest            string   `xml:"versioning>latest,omitempty"`
	Release           string   `xml:"versioning>release,omitempty"`
	Versions          []string `xml:"versioning>versions>version"`
	LastUpdatedString string   `xml:"versioning>lastUpdated"`
}

// ParseMetadata decodes a maven-metadata.xml document.
func ParseMetadata(r io.Reader) (*Metadata, error) {
	var m Metadata
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decoding metadata")
	}
	return &m, nil
}

// MetadataPath is the repository location of the metadata of m's artifact.
func MetadataPath(m *Module) string {
	return path.Join(path.Dir(m.Dir()), MetadataFile)
}

// AddVersion records version as the newest one, as of now.
func (md *Metadata) AddVersion(version string, now time.Time) {
	if !slices.Contains(md.Versions, version) {
		md.Versions = append(md.Versions, version)
	}
	md.Latest = version
	if !strings.HasSuffix(version, snapshot) {
		md.Release = version
	}
	md.LastUpdatedString = now.UTC().Format(lastUpdatedLayout)
}

// LastUpdated parses the lastUpdated timestamp.
func (md *Metadata) LastUpdated() (time.Time, error) {
	return time.Parse(lastUpdatedLayout, md.LastUpdatedString)
}

// Encode writes the document with an XML declaration.
func (md *Metadata) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(md); err != nil {
		return errors.Wrap(err, "encoding metadata")
	}
	_, err := io.WriteString(w, "\n")
	return err
}
