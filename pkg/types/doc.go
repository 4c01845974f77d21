// Package types defines the data shared by every sharedpkg layer: the
// Package produced by the external resolver, the BuildContext of a run, and
// the interfaces for the filesystem, the installed repository and user
// confirmations.
package types
