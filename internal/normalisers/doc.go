// Package normalisers turns source files into clean text. Each subpackage
// handles one format; the Registry picks one by file extension.
package normalisers
