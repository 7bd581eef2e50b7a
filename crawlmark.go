// Package crawlmark turns a base URL and a set of regex pattern rules into
// cleaned Markdown documents. It crawls the site breadth-first with a
// headless browser, filters discovered URLs by the rules, extracts the main
// content of each matching page, and records per-page results against a job
// that tracks progress and lifecycle state.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package crawlmark
