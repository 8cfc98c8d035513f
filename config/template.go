package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// defaultTemplate is written by "sitecheck init". Every value matches Default.
const defaultTemplate = `# sitecheck configuration
#
# Command-line flags override any value set here.

# Site root. Pages and references are joined to this URL.
base_url: http://localhost:8000

# Pages to check, in order. An empty string is the site root.
pages:
  - ""
  - about.html
  - products.html
  - contact.html

# CSS selector for the navigation links to verify.
nav_selector: nav a[href]

# Time allowed for a full page load, and for each link or image check.
page_timeout: 10s
resource_timeout: 5s

# References of one page checked at the same time. 1 keeps the output order stable.
concurrency: 1

user_agent: sitecheck/1.0

# Skip references that robots.txt disallows.
respect_robots: false

# Output format: text, table, json, csv or markdown.
format: text
`

// WriteTemplate writes the commented default configuration to w.
func WriteTemplate(w io.Writer) error {
	if _, err := io.WriteString(w, defaultTemplate); err != nil {
		return fmt.Errorf("write config template: %w", err)
	}
	return nil
}

// WriteTemplateFile writes the default configuration to path, creating parent
// directories. An existing file is only replaced when force is set.
func WriteTemplateFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(defaultTemplate), 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
