// Package docmodel holds the value types exchanged between the markdown
// compiler and a remote rich-text document service: styled runs, mutation
// requests, table descriptors and the read-back document structure.
//
// Offsets are absolute indices into the document's single character stream
// and are measured in UTF-16 code units, matching the remote API.
package docmodel
