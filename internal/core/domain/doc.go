// Package domain defines the core business entities for payslip-saver.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ProviderDocument: A payslip advertised by the provider portal
//   - ArchivedDocument: A payslip already held in the archive folder
//   - WorkItem: A payslip that must be downloaded and archived this run
//   - UploadResult: Browsable links to an archived payslip
//   - RunReport: The outcome of one orchestrated run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
