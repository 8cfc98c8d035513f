// Package main provides the sitecheck CLI entrypoint.
//
// sitecheck loads a fixed list of pages from a site, verifies every
// navigation link and image they reference, and prints a pass/fail report.
//
// Usage:
//
//	sitecheck [base-url]
//	sitecheck init
//	sitecheck version
//
// See --help for all available options.
package main

func main() {
	Execute()
}
