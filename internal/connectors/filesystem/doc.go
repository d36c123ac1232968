// Package filesystem reads the documentation corpus from a local directory.
// Files are matched to a normaliser by extension; hidden files and
// directories are ignored.
package filesystem
