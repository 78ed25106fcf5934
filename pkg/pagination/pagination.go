package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any cursor query can request.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor represents the pagination cursor components.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// RankedCursor extends Cursor with a leading sort bucket, used by listings that
// float some rows (e.g. pending requests) ahead of the rest.
type RankedCursor struct {
	Rank      int
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalization result plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%s", cursor.CreatedAt.UTC().Format(time.RFC3339Nano), cursor.ID.String())
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components.
func ParseCursor(value string) (*Cursor, error) {
	parts, err := decodeParts(value, 2)
	if err != nil || parts == nil {
		return nil, err
	}
	t, id, err := parseTail(parts[0], parts[1])
	if err != nil {
		return nil, err
	}
	return &Cursor{CreatedAt: t, ID: id}, nil
}

// EncodeRankedCursor builds a base64 cursor carrying the sort bucket.
func EncodeRankedCursor(cursor RankedCursor) string {
	payload := fmt.Sprintf("%d|%s|%s", cursor.Rank, cursor.CreatedAt.UTC().Format(time.RFC3339Nano), cursor.ID.String())
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// ParseRankedCursor decodes a cursor produced by EncodeRankedCursor.
func ParseRankedCursor(value string) (*RankedCursor, error) {
	parts, err := decodeParts(value, 3)
	if err != nil || parts == nil {
		return nil, err
	}
	rank, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor rank: %w", err)
	}
	t, id, err := parseTail(parts[1], parts[2])
	if err != nil {
		return nil, err
	}
	return &RankedCursor{Rank: rank, CreatedAt: t, ID: id}, nil
}

func decodeParts(value string, n int) ([]string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", n)
	if len(parts) != n {
		return nil, fmt.Errorf("invalid cursor format")
	}
	return parts, nil
}

func parseTail(rawTime, rawID string) (time.Time, uuid.UUID, error) {
	t, err := time.Parse(time.RFC3339Nano, rawTime)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return t, id, nil
}
