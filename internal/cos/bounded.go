package cos

import "fmt"

// MaxCksumNameLen is the bound on a checksum algorithm name, per the
// CksData record: name is a bounded-string[<=16].
const MaxCksumNameLen = 16

// MaxCksumValLen is the bound on a checksum digest: byte[<=32].
const MaxCksumValLen = 32

// BoundedName validates that name fits the record's fixed-size name field,
// rejecting the input outright rather than silently truncating it -- a
// truncated algorithm name is a silent data hazard (two different
// algorithms colliding on one xattr key), not a cosmetic limit.
func BoundedName(name string, maxLen int) (string, error) {
	if len(name) == 0 {
		return "", fmt.Errorf("checksum name must not be empty")
	}
	if len(name) > maxLen {
		return "", fmt.Errorf("checksum name %q exceeds %d bytes", name, maxLen)
	}
	return name, nil
}
