package kstor

// Transform is applied per top-level field of the (entrypoint-scoped)
// document on every successful load and on Defaults, before the result is
// observed or written back.
type Transform func(key string, value any) any

// Options configures a store at construction. The zero value resolves to
// $HOME/.kstor/<appName>/config.json with no encryption, no entrypoint, and
// no transform.
type Options struct {
	// Name is the store file name. Without an extension ".json" is appended;
	// a name already containing a "." is left as-is. A name containing path
	// separators relocates the file under that sub-path relative to the base
	// directory.
	Name string

	// Dir overrides the default $HOME/.kstor root entirely.
	Dir string

	// AppName names the directory segment under $HOME/.kstor. Empty falls
	// back to the working directory's base name.
	AppName string

	// Entrypoint is a path prefix that aliases the visible root to an
	// internal subtree. Fixed for the life of the store.
	Entrypoint string

	// EncryptionKey enables at-rest encryption when non-empty. The persisted
	// file then holds "<ivHex>:<cipherHex>" instead of JSON text.
	EncryptionKey string

	// Transform, when set, rewrites top-level fields on every load.
	Transform Transform

	// Defaults are merged under the on-disk document at construction;
	// existing top-level keys win over supplied defaults.
	Defaults map[string]any
}
