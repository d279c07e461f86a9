// export_test.go exposes the error formatting pipeline for white-box tests.
package logger

type ErrorEntry = errorEntry

var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)
