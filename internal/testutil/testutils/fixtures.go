package helpers

import (
	"testing/fstest"
)

// GettingStarted is the body of the getting-started fixture page.
const GettingStarted = `---
title: Getting Started
description: Install the CLI and publish your first page.
icon: Rocket
---

# Welcome

![Dashboard](/img/dashboard.png)

## Install

` + "```bash title=\"install.sh\" ref=install\ncurl -fsSL https://example.com/install.sh | sh\n```" + `

## Configure

![Settings screen](/img/settings.png "Settings")

### Environment
`

// SampleContent returns a small content tree with a root page, nested
// sections, a draft and files the compiler must ignore.
func SampleContent() fstest.MapFS {
	return fstest.MapFS{
		"index.md":                {Data: []byte("---\ntitle: Home\ndescription: Portal home\n---\n\nWelcome.\n")},
		"getting-started.md":      {Data: []byte(GettingStarted)},
		"guide/index.mdx":         {Data: []byte("# Guide\n\nOverview of the guides.\n")},
		"guide/deploy-to-prod.md": {Data: []byte("Deploying without a heading.\n\n## Steps\n")},
		"guide/wip.md":            {Data: []byte("---\ntitle: WIP\ndraft: true\n---\nnot yet\n")},
		"guide/_partial.md":       {Data: []byte("# Partial\n")},
		".hidden/secret.md":       {Data: []byte("# Secret\n")},
		"assets/logo.png":         {Data: []byte{0x89, 'P', 'N', 'G'}},
	}
}

// SampleContentWithoutRoot is SampleContent minus the root index page.
func SampleContentWithoutRoot() fstest.MapFS {
	fsys := SampleContent()
	delete(fsys, "index.md")
	return fsys
}

// UnknownIconContent is a tree whose only icon name is not in the registry.
func UnknownIconContent() fstest.MapFS {
	return fstest.MapFS{
		"index.md":  {Data: []byte("# Home\n")},
		"legacy.md": {Data: []byte("---\ntitle: Legacy\ndescription: Old notes\nicon: NoSuchIcon\n---\n\n## Notes\n\nStill here.\n")},
	}
}
