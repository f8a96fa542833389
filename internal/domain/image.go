package domain

// DefaultMaxImageSize is the largest image accepted for encoding.
const DefaultMaxImageSize = 5 * 1024 * 1024 // 5MB

// EncodedImage is a self-contained image payload suitable for Memory.ImageURL.
type EncodedImage struct {
	DataURI     string // "data:<content type>;base64,<payload>"
	ContentType string
	Size        int64 // Size of the raw image in bytes
}
