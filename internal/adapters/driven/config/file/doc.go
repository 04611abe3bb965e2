// Package file stores payslip-saver settings in a TOML file, by default
// ~/.payslip-saver/config.toml. Nested tables are exposed as dot keys such
// as "provider_site.username".
package file
