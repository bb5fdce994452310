// Package main provides the entry point for the sitelens CLI.
//
// sitelens crawls a website, extracts and cleans the content of every
// discovered page, classifies each page's business role, and scores
// pages by update priority.
//
// Usage:
//
//	sitelens crawl <site-url>
//	sitelens compare <site>
//
// See --help for all available options.
package main

// main is the entry point for sitelens.
func main() {
	Execute()
}
