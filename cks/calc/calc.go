// Package calc defines the incremental checksum-calculator contract and
// ships the bundled algorithms (adler32, crc32, md5, zcrc32) plus one
// dynamically-registered example (blake2b) standing in for a ckslib
// plugin. Every calculator here is stateful and reusable: Init resets it
// to the zero state so a single instance can be recycled across objects.
package calc

// Calc is the contract every checksum algorithm -- built-in or loaded via
// ckslib -- satisfies. It is intentionally small: a caller that only knows
// the algorithm by name (via CksLoader) gets back a Calc and nothing more.
type Calc interface {
	// Init resets the calculator to its zero state. Legal to call at any
	// point, including after Final.
	Init()
	// Update folds b into the running digest. Update is associative:
	// Update(b1); Update(b2) must equal one Update(b1||b2) call.
	Update(b []byte)
	// Final concludes the computation (which may, e.g. for MD5, still need
	// to fold in a length suffix) and returns the digest in network byte
	// order. The returned slice's lifetime is tied to the Calc; callers
	// that need to retain it must copy. Calling Update after Final without
	// an intervening Init is undefined.
	Final() []byte
	// Type reports the algorithm's name and fixed digest size.
	Type() (name string, size int)
	// Clone returns a fresh, independent instance of the same algorithm.
	Clone() Calc
	// Recycle releases any pooled resources. Safe to call multiple times;
	// safe to call on a calculator that is about to be garbage collected
	// without ever calling it at all.
	Recycle()
}

// Native algorithm names, used verbatim as extended-attribute key suffixes
// and as CksLoader table entries.
const (
	NameAdler32 = "adler32"
	NameCRC32   = "crc32"
	NameMD5     = "md5"
	NameZCRC32  = "zcrc32"
	NameBlake2b = "blake2b"
)

// IsNative reports whether name is one of the three built-ins that never
// require a ckslib load (zcrc32 counts as built-in too: it's a thin
// zlib-compatible wrapper over the same crc32 table, not a plugin).
func IsNative(name string) bool {
	switch name {
	case NameAdler32, NameCRC32, NameMD5, NameZCRC32:
		return true
	default:
		return false
	}
}
