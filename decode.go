package requestbridge

import (
	"bytes"
	"encoding/json"
	"mime"
	"strings"
)

// decodeBody turns a raw response body into the Data value of a
// ResponseResult. The declared content type wins; without one, the body is
// sniffed: JSON-looking bytes are decoded as JSON, printable text becomes a
// string, anything else stays raw.
func decodeBody(contentType string, raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	mediaType := ""
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = mt
		}
	}

	switch {
	case isJSONMediaType(mediaType):
		return decodeJSON(raw)
	case strings.HasPrefix(mediaType, "text/"):
		return string(raw), nil
	case mediaType == "":
		if looksLikeJSON(raw) {
			return decodeJSON(raw)
		}
		return raw, nil
	default:
		return raw, nil
	}
}

func decodeJSON(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func isJSONMediaType(mediaType string) bool {
	return mediaType == contentTypeJSON || strings.HasSuffix(mediaType, "+json")
}

func looksLikeJSON(raw []byte) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return false
	}
	switch trimmed[0] {
	case '{', '[', '"':
		return true
	}
	return false
}
