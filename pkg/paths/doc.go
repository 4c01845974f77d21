// Package paths provides centralized path handling for sharedpkg.
//
// It answers two questions for every other package:
//
//   - Where does a package version live in the shared store? Resolve returns
//     <store>/<vendorDir>/<name>/<version>[/<targetDir>], a pure function of
//     the package name, version and target dir.
//   - Where do the project-facing entries of a consuming project go? Layout
//     describes the build tree (vendor, bin and site directories) under the
//     project's build prefix.
//
// # Environment Variables
//
//   - SHAREDPKG_STORE_DIR: Override the shared store root
//     (default: $XDG_DATA_HOME/sharedpkg/store)
//
// # Store Layout
//
//	<store>/usage.json                      usage ledger
//	<store>/.locks/<key>.lock               per-package store locks
//	<store>/<vendorDir>/<name>/<version>/   canonical shared sources
package paths
