// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package styleconfig models the style_config JSON document stored on
// blocks and block contents. The backend treats it as opaque; this
// package gives it typed views per content type, parses it defensively
// (a corrupt document reads as empty) and merges edits per top-level key
// so unrelated keys are never clobbered.
package styleconfig

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sort"
)

// Document is a style_config object keyed by top-level key. Values are
// kept as raw JSON so keys this package does not know survive a
// read-merge-write cycle untouched.
type Document map[string]json.RawMessage

// Parse decodes raw into a Document. Empty input, invalid JSON and
// non-object JSON all yield an empty document. Documents stored as a JSON
// string containing JSON (double-encoded) are unwrapped once.
func Parse(raw []byte) Document {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Document{}
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			slog.Debug("style config: undecodable string", "error", err)
			return Document{}
		}
		return Parse([]byte(inner))
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		slog.Debug("style config: falling back to empty document", "error", err)
		return Document{}
	}
	return doc
}

// ParseString is Parse for a string-encoded document.
func ParseString(s string) Document {
	return Parse([]byte(s))
}

// Bytes encodes the document. Keys are emitted in sorted order so equal
// documents encode identically.
func (d Document) Bytes() []byte {
	if len(d) == 0 {
		return []byte("{}")
	}
	b, err := json.Marshal(map[string]json.RawMessage(d))
	if err != nil {
		return []byte("{}")
	}
	return b
}

// String returns the encoded document, as sent in request bodies.
func (d Document) String() string {
	return string(d.Bytes())
}

// Keys returns the top-level keys in sorted order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is present.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Get decodes key into v. It returns false when the key is missing or its
// value does not fit v; v is left untouched in that case.
func (d Document) Get(key string, v any) bool {
	raw, ok := d[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		slog.Debug("style config: ignoring malformed key", "key", key, "error", err)
		return false
	}
	return true
}

// Set encodes v under key. A nil v removes the key.
func (d Document) Set(key string, v any) error {
	if v == nil {
		delete(d, key)
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	d[key] = b
	return nil
}

// Clone returns a shallow copy; raw values are immutable in practice.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Merge returns base with every key of patch applied on top. Keys absent
// from patch keep their base value. Neither input is modified.
func Merge(base, patch Document) Document {
	out := base.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Equal reports whether two documents encode identically.
func Equal(a, b Document) bool {
	return bytes.Equal(a.Bytes(), b.Bytes())
}
