package book

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

var errInvalidCursor = errors.New("invalid cursor")

// CursorData is the keyset position of the last book on a page.
type CursorData struct {
	AfterID   string    `json:"after_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CursorAfter returns the cursor positioned after b.
func CursorAfter(b Book) CursorData {
	return CursorData{AfterID: b.ID, CreatedAt: b.CreatedAt.UTC()}
}

// EncodeCursor encodes cursor data to an opaque URL-safe string.
func EncodeCursor(data CursorData) string {
	if data.AfterID == "" {
		return ""
	}
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a cursor produced by EncodeCursor. An empty string
// means the first page and yields nil.
func DecodeCursor(cursor string) (*CursorData, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, errInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(decoded, &data); err != nil || data.AfterID == "" || data.CreatedAt.IsZero() {
		return nil, errInvalidCursor
	}
	return &data, nil
}
