// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package distribution

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Product is a vendor SDK product line.
type Product int

const (
	SmartClient Product = iota
	SmartGWT
	SmartGWTMobile
)

var productLabels = []string{
	SmartClient:    "SmartClient",
	SmartGWT:       "SmartGWT",
	SmartGWTMobile: "SmartGWT.mobile",
}

// Products lists every product in declaration order.
func Products() []Product {
	return []Product{SmartClient, SmartGWT, SmartGWTMobile}
}

// Label is the vendor's spelling, used in URLs and work directory names.
func (p Product) Label() string {
	if p < 0 || int(p) >= len(productLabels) {
		return "Product(" + strconv.Itoa(int(p)) + ")"
	}
	return productLabels[p]
}

// Name is the lower-cased label, used in artifact file names.
func (p Product) Name() string {
	return strings.ToLower(p.Label())
}

func (p Product) String() string {
	return p.Label()
}

// ParseProduct accepts a label or a name, ignoring case.
func ParseProduct(s string) (Product, error) {
	for _, p := range Products() {
		if strings.EqualFold(s, p.Label()) {
			return p, nil
		}
	}
	return 0, errors.Errorf("unknown product %q", s)
}

// License is a vendor license tier or add-on module.
type License int

const (
	LGPL License = iota
	Eval
	Pro
	Power
	Enterprise
	AnalyticsModule
	MessagingModule
	AIModule
)

var licenseLabels = []struct{ label, name string }{
	LGPL:            {"LGPL", "lgpl"},
	Eval:            {"Eval", "eval"},
	Pro:             {"Pro", "pro"},
	Power:           {"PowerEdition", "power"},
	Enterprise:      {"Enterprise", "enterprise"},
	AnalyticsModule: {"AnalyticsModule", "analytics"},
	MessagingModule: {"RealtimeMessagingModule", "messaging"},
	AIModule:        {"AIModule", "ai"},
}

// Licenses lists every license in declaration order.
func Licenses() []License {
	return []License{LGPL, Eval, Pro, Power, Enterprise, AnalyticsModule, MessagingModule, AIModule}
}

// Label is the vendor's spelling, used in URLs and work directory names.
func (l License) Label() string {
	if l < 0 || int(l) >= len(licenseLabels) {
		return "License(" + strconv.Itoa(int(l)) + ")"
	}
	return licenseLabels[l].label
}

// Name is the short lower-case form, used in artifact file names.
func (l License) Name() string {
	if l < 0 || int(l) >= len(licenseLabels) {
		return strings.ToLower(l.Label())
	}
	return licenseLabels[l].name
}

func (l License) String() string {
	return l.Label()
}

// ParseLicense accepts a label or a name, ignoring case.
func ParseLicense(s string) (License, error) {
	for _, l := range Licenses() {
		if strings.EqualFold(s, l.Label()) || strings.EqualFold(s, l.Name()) {
			return l, nil
		}
	}
	return 0, errors.Errorf("unknown license %q", s)
}
