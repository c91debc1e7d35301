// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package distribution describes vendor SDK distributions and unpacks them
// into a Maven-friendly directory layout.
package distribution

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownDistribution is returned for a (Product, License) pair that was never registered.
var ErrUnknownDistribution = errors.New("unknown distribution")

type pair struct {
	p Product
	l License
}

// Catalog is an immutable registry of distribution specs.
type Catalog struct {
	specs map[pair]*Spec
}

// NewCatalog validates and registers specs. Registering a pair twice is an error.
func NewCatalog(specs ...*Spec) (*Catalog, error) {
	c := &Catalog{specs: make(map[pair]*Spec, len(specs))}
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		k := pair{s.Product, s.License}
		if _, ok := c.specs[k]; ok {
			return nil, errors.Errorf("duplicate distribution %s", s.Key())
		}
		c.specs[k] = s
	}
	return c, nil
}

// Get returns the spec registered for the pair.
func (c *Catalog) Get(p Product, l License) (*Spec, error) {
	s, ok := c.specs[pair{p, l}]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDistribution, "product %s and license %s", p, l)
	}
	return s, nil
}

// All lists the registered specs ordered by product, then license.
func (c *Catalog) All() []*Spec {
	out := make([]*Spec, 0, len(c.specs))
	for _, s := range c.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Product != out[j].Product {
			return out[i].Product < out[j].Product
		}
		return out[i].License < out[j].License
	})
	return out
}

// DefaultCatalog returns the built-in catalog of vendor distributions.
var DefaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := NewCatalog(defaultSpecs()...)
	if err != nil {
		panic(err)
	}
	return c
})
