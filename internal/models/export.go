package models

// ExportFormat selects the rendered export type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ValidExportFormat reports whether the format is supported.
func ValidExportFormat(format ExportFormat) bool {
	return format == ExportFormatCSV || format == ExportFormatPDF
}
