package epub

import "errors"

// Internal structural errors, returned as-is by Open and wrapped into
// errs.ParsingError by the EPUB pipeline (internal/parser/epubfmt).
var (
	errNoContainer = errors.New("META-INF/container.xml not found in archive")
	errNoRootfile  = errors.New("container.xml has no rootfile entry")
	errNoOPF       = errors.New("package document (OPF) not found at declared rootfile path")
)
