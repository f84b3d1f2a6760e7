package script

const (
	// ============================================================================
	// Keywords
	// ============================================================================

	// KeywordAlloc requests an allocation: alloc <name> <size>
	KeywordAlloc = "alloc"

	// KeywordFree releases an allocation: free <name> or free @<addr>
	KeywordFree = "free"

	// KeywordExpectFail prefixes an alloc that must fail
	KeywordExpectFail = "expect-fail"

	// ============================================================================
	// Tokens
	// ============================================================================

	// CommentPrefix starts a comment that runs to the end of the line
	CommentPrefix = "#"

	// AddrPrefix marks a raw address operand instead of a name
	AddrPrefix = "@"

	// CR is stripped from line ends so CRLF scripts parse
	CR = "\r"

	// ============================================================================
	// Size Suffixes
	// ============================================================================

	// KiB is the multiplier for the K suffix
	KiB = 1 << 10

	// MiB is the multiplier for the M suffix
	MiB = 1 << 20

	// ============================================================================
	// Scanner Limits
	// ============================================================================

	// ScannerMaxLineSize caps the length of one script line
	ScannerMaxLineSize = 64 * 1024
)
