// Package qrscan decodes the location QR codes posted in campus rooms.
//
// A code carries a URL-encoded query string, either bare
// ("block=A&floor=2&room=A-204") or inside a full URL
// ("https://gms.campus.edu/report?block=A&floor=2").
package qrscan

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"campus-gms/catalog"
	"campus-gms/forms"
)

// ErrMissingBlock is returned when a code has no block value.
var ErrMissingBlock = errors.New("qr code has no block")

// Location is the decoded content of a room QR code.
type Location struct {
	Block string
	Floor string
	Room  string
}

// Parse decodes raw. Unknown keys are ignored.
func Parse(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	query := raw
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		query = raw[i+1:]
	}
	if i := strings.IndexByte(query, '#'); i >= 0 {
		query = query[:i]
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return Location{}, fmt.Errorf("decode qr payload: %w", err)
	}

	loc := Location{
		Block: strings.TrimSpace(values.Get(catalog.FieldBlock)),
		Floor: strings.TrimSpace(values.Get(catalog.FieldFloor)),
		Room:  strings.TrimSpace(values.Get(catalog.FieldRoom)),
	}
	if loc.Block == "" {
		return Location{}, ErrMissingBlock
	}
	return loc, nil
}

// Action returns the bulk update that pre-fills a form. Empty parts are
// left out so they do not clear what the student already typed.
func (l Location) Action() forms.SetFormData {
	values := map[string]string{catalog.FieldBlock: l.Block}
	if l.Floor != "" {
		values[catalog.FieldFloor] = l.Floor
	}
	if l.Room != "" {
		values[catalog.FieldRoom] = l.Room
	}
	return forms.SetFormData{Values: values}
}

// Query encodes l back into the payload printed on a code.
func (l Location) Query() string {
	v := url.Values{}
	v.Set(catalog.FieldBlock, l.Block)
	if l.Floor != "" {
		v.Set(catalog.FieldFloor, l.Floor)
	}
	if l.Room != "" {
		v.Set(catalog.FieldRoom, l.Room)
	}
	return v.Encode()
}
