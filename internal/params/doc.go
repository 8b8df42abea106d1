// Package params loads the ledger's economic parameters.
//
// The schema lives in schema.cue and is embedded in the binary. Operators may
// override individual values with a CUE file of their own; it is unified
// against the closed schema so typos and out-of-range values fail with a
// file position instead of silently falling back to a default.
package params
