package viewconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/waozixyz/paywall/uierr"
)

// object is a JSON object that remembers key insertion order. Values are kept
// raw and decoded on demand by the mapper.
type object struct {
	path   string
	keys   []string
	fields map[string]json.RawMessage
}

func (o *object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	o.fields = make(map[string]json.RawMessage)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		if _, dup := o.fields[key]; !dup {
			o.keys = append(o.keys, key)
		}
		o.fields[key] = raw
	}
	_, err = dec.Token() // closing brace
	return err
}

func parseObject(path string, raw json.RawMessage) (*object, error) {
	o := &object{}
	if err := json.Unmarshal(raw, o); err != nil {
		return nil, &uierr.Error{Kind: uierr.KindDecodingFailed, Field: path, Message: "expected object", Err: err}
	}
	o.path = path
	return o, nil
}

func (o *object) sub(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

func (o *object) has(key string) bool {
	raw, ok := o.fields[key]
	return ok && !isNull(raw)
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// isObject / isString peek at the first significant byte of a raw value.
func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}

func isString(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '"'
}

func (o *object) decode(key string, v any) error {
	if err := json.Unmarshal(o.fields[key], v); err != nil {
		return &uierr.Error{Kind: uierr.KindDecodingFailed, Field: o.sub(key), Message: "malformed value", Err: err}
	}
	return nil
}

func (o *object) requireString(key string) (string, error) {
	if !o.has(key) {
		return "", uierr.DecodingFailed(o.sub(key), "required field is missing")
	}
	var s string
	if err := o.decode(key, &s); err != nil {
		return "", err
	}
	if s == "" {
		return "", uierr.DecodingFailed(o.sub(key), "required field is empty")
	}
	return s, nil
}

func (o *object) optString(key, def string) (string, error) {
	if !o.has(key) {
		return def, nil
	}
	var s string
	if err := o.decode(key, &s); err != nil {
		return "", err
	}
	return s, nil
}

func (o *object) optFloat(key string, def float64) (float64, error) {
	if !o.has(key) {
		return def, nil
	}
	var f float64
	if err := o.decode(key, &f); err != nil {
		return 0, err
	}
	return f, nil
}

func (o *object) optInt(key string, def int) (int, error) {
	f, err := o.optFloat(key, float64(def))
	return int(f), err
}

func (o *object) optBool(key string, def bool) (bool, error) {
	if !o.has(key) {
		return def, nil
	}
	var b bool
	if err := o.decode(key, &b); err != nil {
		return false, err
	}
	return b, nil
}

func (o *object) requireObject(key string) (*object, error) {
	if !o.has(key) {
		return nil, uierr.DecodingFailed(o.sub(key), "required field is missing")
	}
	return parseObject(o.sub(key), o.fields[key])
}

func (o *object) optObject(key string) (*object, error) {
	if !o.has(key) {
		return nil, nil
	}
	return parseObject(o.sub(key), o.fields[key])
}

func (o *object) optArray(key string) ([]json.RawMessage, error) {
	if !o.has(key) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := o.decode(key, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (o *object) requireArray(key string) ([]json.RawMessage, error) {
	if !o.has(key) {
		return nil, uierr.DecodingFailed(o.sub(key), "required field is missing")
	}
	return o.optArray(key)
}
