// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package distribution

import "strings"

// Ant-style patterns describing the vendor archive layout.
const (
	docIncludes = "**/*.pdf"
	docExcludes = "**/apache-ant*/**"

	jarIncludes = "**/isc-*.jar, **/isomorphic_*.jar, **/smartgwt-*.jar"
	jarExcludes = "**/samples/**, **/*examples.jar, **/*tomcat.jar, **/*isomorphic_web_services.jar, **/isomorphic_applets.jar"
	// Jars renamed by dedicated rules.
	jarConflicts = "**/smartgwtee.jar, **/isc-jakarta-oro*.jar, **/isomorphic_realtime_messaging.jar"

	pomSmartClient = "**/smartclient-*resources.pom, **/smartclient-tools.xml, **/smartclient-messaging.xml, **/smartclient-analytics.xml"
	pomSmartGWT    = "**/smartgwt-skins.pom, **/smartgwt-analytics.pom, **/smartgwt-messaging.pom"
	pomServer      = "**/isomorphic-*.pom, **/isomorphic-*.xml, **/dependencygroup-*.xml"
	pomShared      = "**/isc-*.pom, **/isc-*.xml"

	seleniumIncludes = "**/selenium/**, **/batchReport.template"

	smartClientRuntimeIncludes = "**/smartclientRuntime/isomorphic/**, **/smartclientRuntime/WEB-INF/classes/**, **/smartclientRuntime/WEB-INF/iscTaglib.xml"
	smartClientSDKIncludes     = "**/smartclientSDK/tools/**"
	smartClientSDKExcludes     = "**/dsBrowser.jsp,**/classBrowser.jsp,**/sqlBrowser.jsp,**/maven/**"

	smartClientJavadoc    = "**/smartclientSDK/isomorphic/system/reference/server/javadoc/**"
	smartGWTClientJavadoc = "**/doc/javadoc/**"
	smartGWTServerJavadoc = "**/doc/server/javadoc/**"

	// Link selector for bundles whose index also links loose copies of
	// files already inside the zip.
	smartGWTZipSelector = `smartgwt-.*\.zip`
)

func rule(target, includes, excludes string) ContentRule {
	return ContentRule{Target: target, Filter: MustFilter(includes, excludes)}
}

// overrides are the pair-specific rules, ordered ahead of the shared ones.
type overrides struct {
	selectors    []string
	licenseToken string
	contents     []ContentRule
}

func defaultSpecs() []*Spec {
	var specs []*Spec
	tiers := []License{LGPL, Eval, Pro, Power, Enterprise, AnalyticsModule, MessagingModule, AIModule}
	for _, l := range tiers {
		specs = append(specs, newSpec(SmartClient, l, overrides{}))
	}
	smartGWT := map[License]overrides{
		LGPL: {
			selectors: []string{smartGWTZipSelector},
			contents:  []ContentRule{rule("lib/smartgwt-lgpl.jar", "**/smartgwt.jar", "")},
		},
		Eval: {
			licenseToken: "EnterpriseEval",
			contents:     []ContentRule{rule("lib/smartgwt-eval.jar", "**/smartgwtee.jar", "")},
		},
		Pro:        {contents: []ContentRule{rule("lib/smartgwt-pro.jar", "**/smartgwtpro.jar", "")}},
		Power:      {contents: []ContentRule{rule("lib/smartgwt-power.jar", "**/smartgwtpower.jar", "")}},
		Enterprise: {contents: []ContentRule{rule("lib/smartgwt-enterprise.jar", "**/smartgwtee.jar", "")}},
	}
	for _, l := range tiers {
		specs = append(specs, newSpec(SmartGWT, l, smartGWT[l]))
	}
	// Mobile user documentation is not shipped as pdf.
	specs = append(specs, newSpec(SmartGWTMobile, LGPL, overrides{
		selectors: []string{smartGWTZipSelector},
		contents:  []ContentRule{rule("doc/user", "smartgwt-mobile*/user_guide.*", "")},
	}))
	return specs
}

func newSpec(p Product, l License, o overrides) *Spec {
	s := &Spec{
		Product:      p,
		License:      l,
		RemoteIndex:  DefaultRemoteIndex,
		LicenseToken: o.licenseToken,
		Selectors:    []string{DefaultSelector},
	}
	if o.selectors != nil {
		s.Selectors = o.selectors
	}
	s.Contents = append(s.Contents, o.contents...)

	var poms []string
	switch p {
	case SmartClient:
		poms = append(poms, pomSmartClient)
		s.Contents = append(s.Contents,
			rule("sdk/#smartclientSDK", "**/smartclientSDK/**", smartClientSDKExcludes),
			rule("assembly/smartclient-resources/#smartclientRuntime", smartClientRuntimeIncludes, ""),
			rule("assembly/smartclient-analytics-resources/isomorphic/system/modules", "ISC_Analytics*,ISC_Drawing*", ""),
			rule("assembly/smartclient-analytics-resources/isomorphic/system/modules-debug", "modules-debug/ISC_Analytics*,modules-debug/ISC_Drawing*", ""),
			rule("assembly/smartclient-messaging-resources/isomorphic/system/modules", "ISC_RealtimeMessaging*", ""),
			rule("assembly/smartclient-messaging-resources/isomorphic/system/modules-debug", "modules-debug/ISC_RealtimeMessaging*", ""),
			rule("assembly/smartclient-tools-resources/#smartclientSDK", smartClientSDKIncludes, smartClientSDKExcludes),
		)
	case SmartGWT:
		poms = append(poms, pomSmartGWT)
	}
	poms = append(poms, "**/"+p.Name()+"-"+l.Name()+"*", pomShared)
	// LGPL bundles carry server poms that do not apply.
	if l != LGPL {
		poms = append(poms, pomServer)
	}

	serverJavadoc := smartClientJavadoc
	if p == SmartGWT {
		serverJavadoc = smartGWTServerJavadoc
	}
	s.Contents = append(s.Contents,
		rule("pom", strings.Join(poms, ","), ""),
		rule("doc/user", docIncludes, docExcludes),
		rule("doc/api/client/#javadoc", smartGWTClientJavadoc, ""),
		rule("doc/api/server/#javadoc", serverJavadoc, ""),
		rule("lib", jarIncludes, jarExcludes+", "+jarConflicts),
		rule("lib/isc-jakarta-oro.jar", "**/isc-jakarta-oro*.jar", ""),
		rule("lib/smartgwt-analytics.jar", "**/analytics.jar", ""),
		rule("lib/smartgwt-messaging.jar", "**/messaging.jar", ""),
		rule("lib/isomorphic-messaging.jar", "**/isomorphic_realtime_messaging.jar", ""),
		rule("assembly/isc-selenium-resources", seleniumIncludes, ""),
	)
	if l == Eval || l == Power || l == Enterprise {
		s.Contents = append(s.Contents, rule("assembly/isc-batchuploader-resources/ds", "**/batchUpload.ds.xml", ""))
	}
	return s
}
