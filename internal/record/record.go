package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// ErrDecode is matched (errors.Is) by every DecodeError.
var ErrDecode = errors.New("record decode")

// DecodeError explains why bytes did not decode into a record shape.
type DecodeError struct {
	Field  string // empty when the document itself is unusable
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return "record decode: " + e.Reason
	}
	return fmt.Sprintf("record decode: field %q: %s", e.Field, e.Reason)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// ItemVersion is the full record carried on the stream.
type ItemVersion struct {
	TCIN             string `json:"tcin"`
	Version          uint32 `json:"version"`
	SourceSystem     string `json:"source_system"`
	SourceTimestamp  string `json:"source_timestamp"`
	CreatedTimestamp string `json:"created_timestamp"`
	Status           Status `json:"status"`
}

// Projection returns the minimal status view of the record.
func (iv ItemVersion) Projection() StatusProjection {
	return StatusProjection{TCIN: iv.TCIN, Version: iv.Version, Status: iv.Status}
}

// Encode returns the JSON wire form.
func (iv ItemVersion) Encode() ([]byte, error) { return json.Marshal(iv) }

// StatusProjection is the minimal record kept in the projection family.
type StatusProjection struct {
	TCIN    string `json:"tcin"`
	Version uint32 `json:"version"`
	Status  Status `json:"status"`
}

// Encode returns the canonical projection bytes.
func (p StatusProjection) Encode() ([]byte, error) { return json.Marshal(p) }

var (
	projectionPaths = []string{"tcin", "version", "status"}
	fullPaths       = []string{"tcin", "version", "status", "source_system", "source_timestamp", "created_timestamp"}
)

// DecodeProjection extracts a StatusProjection from either a full record or
// a projection. Field names match exactly; unknown fields are ignored;
// tcin, version and status are required.
func DecodeProjection(b []byte) (StatusProjection, error) {
	res, err := fields(b, projectionPaths)
	if err != nil {
		return StatusProjection{}, err
	}
	return projection(res)
}

// DecodeItemVersion decodes a full record; all six fields are required.
func DecodeItemVersion(b []byte) (ItemVersion, error) {
	res, err := fields(b, fullPaths)
	if err != nil {
		return ItemVersion{}, err
	}
	p, err := projection(res)
	if err != nil {
		return ItemVersion{}, err
	}
	iv := ItemVersion{TCIN: p.TCIN, Version: p.Version, Status: p.Status}
	if iv.SourceSystem, err = str(res[3], "source_system"); err != nil {
		return ItemVersion{}, err
	}
	if iv.SourceTimestamp, err = str(res[4], "source_timestamp"); err != nil {
		return ItemVersion{}, err
	}
	if iv.CreatedTimestamp, err = str(res[5], "created_timestamp"); err != nil {
		return ItemVersion{}, err
	}
	return iv, nil
}

// fields walks the top-level object once and returns the value of each
// path. A path named more than once fails, so every reader of the raw bytes
// agrees on which value counts.
func fields(b []byte, paths []string) ([]gjson.Result, error) {
	if !gjson.ValidBytes(b) {
		return nil, &DecodeError{Reason: "invalid JSON"}
	}
	doc := gjson.ParseBytes(b)
	if !doc.IsObject() {
		return nil, &DecodeError{Reason: "not a JSON object"}
	}
	res := make([]gjson.Result, len(paths))
	var dup string
	doc.ForEach(func(k, v gjson.Result) bool {
		for i, p := range paths {
			if k.Str != p {
				continue
			}
			if res[i].Exists() {
				dup = p
				return false
			}
			res[i] = v
		}
		return true
	})
	if dup != "" {
		return nil, &DecodeError{Field: dup, Reason: "duplicate field"}
	}
	return res, nil
}

func projection(res []gjson.Result) (StatusProjection, error) {
	var (
		p   StatusProjection
		err error
	)
	if p.TCIN, err = str(res[0], "tcin"); err != nil {
		return StatusProjection{}, err
	}
	if p.Version, err = u32(res[1], "version"); err != nil {
		return StatusProjection{}, err
	}
	name, err := str(res[2], "status")
	if err != nil {
		return StatusProjection{}, err
	}
	if p.Status, err = ParseStatus(name); err != nil {
		return StatusProjection{}, &DecodeError{Field: "status", Reason: err.Error()}
	}
	return p, nil
}

func str(r gjson.Result, field string) (string, error) {
	if !r.Exists() {
		return "", &DecodeError{Field: field, Reason: "missing"}
	}
	if r.Type != gjson.String {
		return "", &DecodeError{Field: field, Reason: "expected string, got " + r.Type.String()}
	}
	if !utf8.ValidString(r.Str) {
		return "", &DecodeError{Field: field, Reason: "invalid UTF-8"}
	}
	return r.Str, nil
}

// u32 accepts only integer literals in [0, 2^32-1].
func u32(r gjson.Result, field string) (uint32, error) {
	if !r.Exists() {
		return 0, &DecodeError{Field: field, Reason: "missing"}
	}
	if r.Type != gjson.Number {
		return 0, &DecodeError{Field: field, Reason: "expected unsigned integer, got " + r.Type.String()}
	}
	v, err := strconv.ParseUint(r.Raw, 10, 32)
	if err != nil {
		return 0, &DecodeError{Field: field, Reason: fmt.Sprintf("expected unsigned 32-bit integer, got %s", r.Raw)}
	}
	return uint32(v), nil
}
