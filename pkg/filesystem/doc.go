// Package filesystem provides the types.FS implementation used by sharedpkg.
//
// Everything that touches the shared store or a build tree goes through
// types.FS so that link and copy logic can be exercised against the real
// filesystem in tests.
package filesystem
