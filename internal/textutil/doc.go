// Package textutil provides small text helpers shared by the command layer:
// filename sanitization for downloaded artefacts and parsing of file paths
// that terminals type when a file is dropped onto them.
package textutil
