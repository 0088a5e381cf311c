// Package cursor encodes the pagination state of a trip search into an
// opaque, URL-safe token.
package cursor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/dharmasatrya/tripsearch/internal/models"
)

// Version is written into every token. Decoding carries it through as is.
const Version = 1

// maxPayloadBytes caps the inflated size of a client supplied token.
const maxPayloadBytes = 64 << 10

// Data is the decoded content of a cursor token.
type Data struct {
	Version int                 `json:"v"`
	Params  models.SearchParams `json:"params"`
}

// Encode returns the token of the page following a search made with params.
// Without metadata, or when it lacks the instant the next page starts at,
// there is nothing to anchor on and no token is produced.
func Encode(params models.SearchParams, metadata *models.Metadata) (string, bool) {
	if metadata == nil || metadata.NextSearchDate(params.ArriveBy).IsZero() {
		return "", false
	}

	next := params.Clone()
	next.SearchDate = metadata.NextSearchDate(params.ArriveBy)
	next.UseFlex = false
	next.Cursor = ""
	window := metadata.SearchWindowUsed
	next.SearchWindow = &window

	payload, err := json.Marshal(Data{Version: Version, Params: next})
	if err != nil {
		return "", false
	}

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", false
	}
	if _, err := w.Write(payload); err != nil {
		return "", false
	}
	if err := w.Close(); err != nil {
		return "", false
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), true
}

// Decode parses a token. Malformed input yields false, never an error, so a
// bad cursor degrades into a first-page search.
func Decode(token string) (Data, bool) {
	if token == "" {
		return Data{}, false
	}

	compressed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Data{}, false
	}

	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()

	payload, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes+1))
	if err != nil || len(payload) > maxPayloadBytes {
		return Data{}, false
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return Data{}, false
	}
	if data.Params.SearchDate.IsZero() {
		return Data{}, false
	}

	data.Params.UseFlex = false
	data.Params.Cursor = ""
	return data, true
}
