package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RedirectType is the HTTP redirect code stored on a rewrite. Zero means the
// request path is served directly.
type RedirectType int64

const (
	RedirectNone      RedirectType = 0
	RedirectPermanent RedirectType = 301
)

// String returns the symbolic name used in CLI output and scenario files.
func (r RedirectType) String() string {
	switch r {
	case RedirectNone:
		return "none"
	case RedirectPermanent:
		return "permanent"
	default:
		return strconv.FormatInt(int64(r), 10)
	}
}

// ParseRedirectType accepts the symbolic names as well as the numeric codes.
func ParseRedirectType(s string) (RedirectType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "0":
		return RedirectNone, nil
	case "permanent", "301":
		return RedirectPermanent, nil
	}
	return 0, fmt.Errorf("unknown redirect type %q", s)
}

// RewriteRecord is one persisted mapping from a public request path to an
// internal target path.
type RewriteRecord struct {
	ID              *int64       `json:"id,omitempty"`
	EntityType      string       `json:"entity_type"`
	EntityID        int64        `json:"entity_id"`
	RequestPath     string       `json:"request_path"`
	TargetPath      string       `json:"target_path"`
	RedirectType    RedirectType `json:"redirect_type"`
	StoreID         int64        `json:"store_id"`
	Description     *string      `json:"description,omitempty"`
	IsAutogenerated bool         `json:"is_autogenerated"`
	Metadata        *string      `json:"metadata,omitempty"` // raw payload as persisted
}

// Managed reports whether the record belongs to the reconciliation engine.
func (r RewriteRecord) Managed() bool {
	return r.IsAutogenerated
}

// Metadata is the decoded form of a rewrite's metadata payload.
// The only recognized key is category_id.
type Metadata struct {
	CategoryID *int64 `json:"category_id,omitempty"`
}

// ErrUnparsableMetadata is returned by ParseMetadata for payloads that are
// neither canonical JSON nor the legacy serialized form.
var ErrUnparsableMetadata = errors.New("unparsable rewrite metadata")

var (
	legacyCategoryID = regexp.MustCompile(`s:11:"category_id";(?:i:(-?\d+)|s:\d+:"(-?\d+)")`)
	legacyInt        = regexp.MustCompile(`^i:(-?\d+);?$`)
	legacyEmptyArray = regexp.MustCompile(`^a:0:\{\}$`)
)

// ParseMetadata decodes a raw metadata payload. Nil and empty payloads decode
// to the zero Metadata. A category id of zero or below is treated as absent.
func ParseMetadata(raw *string) (Metadata, error) {
	if raw == nil {
		return Metadata{}, nil
	}
	s := strings.TrimSpace(*raw)
	switch {
	case s == "", s == "null", s == "N;", s == "{}", s == "[]":
		return Metadata{}, nil
	case strings.HasPrefix(s, "{"):
		return parseJSONMetadata(s)
	case legacyEmptyArray.MatchString(s):
		return Metadata{}, nil
	case strings.HasPrefix(s, "a:"):
		m := legacyCategoryID.FindStringSubmatch(s)
		if m == nil {
			return Metadata{}, fmt.Errorf("%w: %q", ErrUnparsableMetadata, s)
		}
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		return metadataFromDigits(digits, s)
	}
	if m := legacyInt.FindStringSubmatch(s); m != nil {
		return metadataFromDigits(m[1], s)
	}
	return Metadata{}, fmt.Errorf("%w: %q", ErrUnparsableMetadata, s)
}

func parseJSONMetadata(s string) (Metadata, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrUnparsableMetadata, err)
	}
	v, ok := raw["category_id"]
	if !ok || v == nil {
		return Metadata{}, nil
	}
	switch val := v.(type) {
	case json.Number:
		return metadataFromDigits(val.String(), s)
	case string:
		return metadataFromDigits(val, s)
	}
	return Metadata{}, fmt.Errorf("%w: category_id has type %T", ErrUnparsableMetadata, v)
}

func metadataFromDigits(digits, payload string) (Metadata, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(digits), 10, 64)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %q", ErrUnparsableMetadata, payload)
	}
	if id <= 0 {
		return Metadata{}, nil
	}
	return Metadata{CategoryID: &id}, nil
}

// EncodeMetadata serializes metadata as canonical JSON. Metadata without a
// category id encodes to nil (no payload).
func EncodeMetadata(m Metadata) (*string, error) {
	if m.CategoryID == nil {
		return nil, nil
	}
	b, err := MarshalCanonical(IRObject{"category_id": IRInt(*m.CategoryID)})
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	s := string(b)
	return &s, nil
}

// MustEncodeMetadata is like EncodeMetadata but panics on error. The
// payload holds at most one integer, which always encodes, so it is safe on
// write paths.
func MustEncodeMetadata(m Metadata) *string {
	s, err := EncodeMetadata(m)
	if err != nil {
		panic(err)
	}
	return s
}

// CategoryMetadata is shorthand for metadata scoped to a category.
func CategoryMetadata(id int64) Metadata {
	return Metadata{CategoryID: &id}
}
