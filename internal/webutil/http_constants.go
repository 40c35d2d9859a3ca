package webutil

const (
	// Header Keys
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderAuthorization      = "Authorization"

	// Content Types
	ContentTypeJSONUTF8 = "application/json; charset=utf-8"
	ContentTypePDF      = "application/pdf"

	// maxJSONBodyBytes caps request bodies decoded by DecodeJSON
	maxJSONBodyBytes = 1 << 20
)
