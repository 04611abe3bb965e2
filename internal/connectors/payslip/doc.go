// Package payslip holds what the provider portal integrations share:
// tolerant decoding of portal identifiers and dates, and streaming a
// payslip download to the local download directory.
//
// Each portal lives in its own subpackage and implements driven.PayslipProvider.
package payslip
