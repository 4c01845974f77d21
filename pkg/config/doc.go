// Package config loads the per-project sharedpkg configuration.
//
// Sources are merged in order:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. <project>/sharedpkg.toml, when present
//  3. explicit environment overrides (SHAREDPKG_STORE_DIR,
//     SHAREDPKG_SYMLINK_ENABLED), read through the Getenv option
//
// Every recognized key is type checked before decoding; a wrong type is a
// CONFIG_INVALID error and is never coerced. Unknown keys are ignored.
//
// The build prefix is derived from the build-dir and version-dir rules for
// the current mode and rendered with the branch of the BuildContext:
//
//	[shared.build-dir]
//	dev = "build"
//	no-dev = "dist"
//
//	[shared.version-dir]
//	dev = "{$branch}"
//	no-dev = "{$branch}"
//
// yields "build/main" for a dev build of branch main.
package config
