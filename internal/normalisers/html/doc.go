// Package html provides a Normaliser for HTML documents, tuned for Sphinx
// builds such as the Python documentation. Navigation, sidebars and footers
// are dropped and the main content area is preferred when present.
package html
