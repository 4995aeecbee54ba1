// Package pagination implements opaque cursor paging for list endpoints.
// Cursors are base64 JSON blobs so clients can hold them between requests
// without learning the sort key.
package pagination

import (
	"encoding/base64"
	"encoding/json"
)

// Pagination is the query-string contract shared by every list endpoint.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=10" validate:"gte=1,lte=250"`
}

// Cursor pins a position in a (created_at, id) ordered scan.
type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// PageInfo is embedded in list responses.
type PageInfo struct {
	NextPageToken     string `json:"next_page_token"`
	PreviousPageToken string `json:"previous_page_token"`
	HasMore           bool   `json:"has_more"`
}

func EncodeCursor(cursor Cursor) (string, error) {
	raw, err := json.Marshal(cursor)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func DecodeCursor(token string) (*Cursor, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	cursor := new(Cursor)
	if err := json.Unmarshal(raw, cursor); err != nil {
		return nil, err
	}
	return cursor, nil
}

// BuildCursorPageInfo derives paging metadata from a page fetched with
// limit+1 rows: the extra row only signals that another page exists and is
// trimmed before the cursor is taken from the last visible row.
func BuildCursorPageInfo[T any](rows []*T, limit int32, cursorOf func(*T) string) *PageInfo {
	if len(rows) == 0 {
		return &PageInfo{}
	}

	info := &PageInfo{HasMore: len(rows) > int(limit)}
	if info.HasMore {
		rows = rows[:limit]
	}
	info.NextPageToken = cursorOf(rows[len(rows)-1])
	return info
}
