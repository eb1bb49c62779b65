package listing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text holds a field the API sends either as a string or as a number,
// such as a price ("$1,250,000" or 1250000) or a zpid.
type Text string

// UnmarshalJSON accepts a JSON string, number, or null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

// wireListing is a listing as sent. Every field is decoded on its own so
// that one oddly typed field does not cost the whole listing.
type wireListing struct {
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
	Address   json.RawMessage `json:"address"`
	Price     json.RawMessage `json:"price"`
	Bedrooms  json.RawMessage `json:"bedrooms"`
	Bathrooms json.RawMessage `json:"bathrooms"`
	ZPID      json.RawMessage `json:"zpid"`
}

// wireAddress is the structured address form. Some responses carry the
// coordinates here instead of on the listing.
type wireAddress struct {
	Street        string          `json:"street"`
	StreetAddress string          `json:"streetAddress"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	Zipcode       Text            `json:"zipcode"`
	Latitude      json.RawMessage `json:"latitude"`
	Longitude     json.RawMessage `json:"longitude"`
}

// UnmarshalJSON decodes a listing leniently. It fails only when data is
// not a JSON object; fields of an unexpected type are left empty.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var w wireListing
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := Listing{
		Latitude:  flexFloat(w.Latitude),
		Longitude: flexFloat(w.Longitude),
		Price:     flexText(w.Price),
		Bedrooms:  flexFloat(w.Bedrooms),
		Bathrooms: flexFloat(w.Bathrooms),
		ZPID:      flexText(w.ZPID),
	}

	raw := bytes.TrimSpace(w.Address)
	switch {
	case len(raw) > 0 && raw[0] == '"':
		out.Address = string(flexText(raw))
	case len(raw) > 0 && raw[0] == '{':
		var a wireAddress
		if err := json.Unmarshal(raw, &a); err == nil {
			out.Address = a.line()
			if out.Latitude == nil && out.Longitude == nil {
				out.Latitude, out.Longitude = flexFloat(a.Latitude), flexFloat(a.Longitude)
			}
		}
	}

	*l = out
	return nil
}

// line formats the address as "street, city, state zipcode", skipping
// empty parts.
func (a wireAddress) line() string {
	street := a.Street
	if street == "" {
		street = a.StreetAddress
	}
	region := strings.TrimSpace(a.State + " " + string(a.Zipcode))

	var parts []string
	for _, p := range []string{street, a.City, region} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// flexFloat reads a number, a numeric string ("3", "1,200") or nothing.
// Empty strings, null and other types yield nil.
func flexFloat(data json.RawMessage) *float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var f float64
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = v
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if err := json.Unmarshal(data, &f); err != nil {
			return nil
		}
	default:
		return nil
	}
	return &f
}

// flexText reads a string or number; anything else yields "".
func flexText(data json.RawMessage) Text {
	if len(bytes.TrimSpace(data)) == 0 {
		return ""
	}
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return ""
	}
	return t
}
