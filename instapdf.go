// Package instapdf turns a read-it-later reading list into a single printable
// document. It logs into the reading service, extracts the readable content of
// each saved article, assembles a paginated HTML document with a table of
// contents and per-article QR codes, and renders it to PDF.
//
// This package contains domain types, interfaces, and the pure document
// assembly core following Ben Johnson's Standard Package Layout.
// Implementations live in subdirectories named after their primary
// dependency (e.g., goquery/, rod/, sqlite/).
package instapdf
