// Package data bundles the sample dataset.
package data

import _ "embed"

// SampleFile is the conventional name of the sample dataset.
const SampleFile = "sample.csv"

// Sample is the bundled iris sample: 150 rows, 50 per species.
//
//go:embed sample.csv
var Sample []byte
