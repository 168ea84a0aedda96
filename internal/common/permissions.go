// Package common holds the file modes and path checks shared by the stores
// that write to disk.
package common

const (
	// FilePermissionSecure covers the config file, stored credentials and
	// the history ledger
	FilePermissionSecure = 0600
	// FilePermissionNormal covers exported fixtures and agent configs
	FilePermissionNormal = 0644

	DirPermissionSecure = 0700
	DirPermissionNormal = 0755
)
