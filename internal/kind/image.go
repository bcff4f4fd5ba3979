// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package kind

// Image is the in-process representation of a workflow image. Pixel decoding
// is left to the blocks that need it.
type Image struct {
	ParentID string         `json:"parent_id"`
	Width    int            `json:"width,omitempty"`
	Height   int            `json:"height,omitempty"`
	Data     []byte         `json:"-"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// imageReferenceTypes are the accepted "type" values of a serialized image
// reference such as {"type": "url", "value": "https://..."}.
var imageReferenceTypes = map[string]struct{}{
	"base64": {},
	"url":    {},
	"file":   {},
	"numpy":  {},
}

func isImage(v any) bool {
	switch img := v.(type) {
	case Image:
		return true
	case *Image:
		return img != nil
	case map[string]any:
		t, ok := img["type"].(string)
		if !ok {
			return false
		}
		if _, known := imageReferenceTypes[t]; !known {
			return false
		}
		_, hasValue := img["value"]
		return hasValue
	}
	return false
}
