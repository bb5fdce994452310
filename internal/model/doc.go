// Package model defines the core data types shared across sitelens.
//
// The central type is ExtractedPage, the normalized record produced for
// every URL a crawl touches, whether the fetch succeeded or not. The Role
// enum lives here rather than in the classifier so that reports and the
// database can store roles without importing classification logic.
//
// All types in this package are transient and functional: a crawl creates
// them, returns them to the caller, and never mutates them afterwards.
package model
