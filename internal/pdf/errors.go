package pdf

import "errors"

var (
	// ErrFileNotFound is returned when an input path does not exist.
	ErrFileNotFound = errors.New("file does not exist")
	// ErrNotPDF is returned when a path does not carry a .pdf extension.
	ErrNotPDF = errors.New("file is not a PDF")
	// ErrEmptyPDF is returned for documents without pages.
	ErrEmptyPDF = errors.New("PDF file is empty")
	// ErrEmptyList is returned when no files were given.
	ErrEmptyList = errors.New("file list is empty")
	// ErrTooFewFiles is returned when fewer than two files were given.
	ErrTooFewFiles = errors.New("at least 2 files are required to merge")
	// ErrEncrypted is returned for protected inputs without usable credentials.
	ErrEncrypted = errors.New("PDF is password protected")
)
