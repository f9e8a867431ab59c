package core

import "fmt"

// DefaultSizeGateBytes is the size at and above which local validation is
// skipped (decimal gigabyte).
const DefaultSizeGateBytes int64 = 1_000_000_000

// ShouldFullyValidate reports whether a file of byteLength bytes is small
// enough to be loaded into the engine.
func ShouldFullyValidate(byteLength int64) bool {
	return shouldFullyValidate(byteLength, DefaultSizeGateBytes)
}

func shouldFullyValidate(byteLength, threshold int64) bool {
	if threshold <= 0 {
		threshold = DefaultSizeGateBytes
	}
	return byteLength < threshold
}

// sizeBypassResult is the advisory result for a file over the size gate.
// The file's bytes are never inspected.
func sizeBypassResult(format LogicalFormat, byteLength int64) ValidationResult {
	res := emptyResult(format)
	res.IsValid = true
	res.Error = fmt.Sprintf("File too large for client-side validation (%d bytes); detailed validation will be performed by the server", byteLength)
	res.Code = MapMessage(res.Error).Code
	return res
}
