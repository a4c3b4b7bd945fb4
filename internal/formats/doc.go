// Package formats holds the target format catalog offered after an upload.
//
// The catalog maps a file category, as reported by the upload service, to an
// ordered list of target formats. Lookups are pure: an unknown category yields
// an empty list rather than an error. Options prepends the neutral
// "Select target format" placeholder used by interactive pickers.
//
// Defaults cover the document and image categories. Entries under
// [formats.<category>] in the configuration replace the defaults for that
// category or add new categories.
package formats
