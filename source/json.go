package source

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
)

// JSON decodes exactly one JSON document. Duplicate object keys are rejected
// unless AllowDuplicateKeys is given.
func JSON(b []byte, opts ...Option) (any, error) {
	o := apply(opts)
	dec := j.NewDecoder(bytes.NewReader(b))
	if o.numbers {
		dec.UseNumber()
	}
	t := &jsonTree{dec: dec, opts: o}
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	v, err := t.fromToken(tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	// the token stream does not check separators
	if !j.Valid(b) {
		return nil, syntaxError(b)
	}
	return v, nil
}

// JSONReader reads r to the end and decodes it with JSON.
func JSONReader(r io.Reader, opts ...Option) (any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return JSON(b, opts...)
}

func syntaxError(b []byte) error {
	var v any
	if err := j.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return ErrSyntax
}

type jsonTree struct {
	dec  *j.Decoder
	opts options
}

func (t *jsonTree) value(path string) (any, error) {
	tok, err := t.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return t.fromToken(tok, path)
}

func (t *jsonTree) fromToken(tok any, path string) (any, error) {
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return t.object(path)
		case '[':
			return t.array(path)
		}
		return nil, fmt.Errorf("source: unexpected %q at %s", rune(v), displayPath(path))
	case j.Number:
		return stdjson.Number(v), nil
	default:
		// string, float64, bool or nil
		return v, nil
	}
}

func (t *jsonTree) object(path string) (any, error) {
	out := make(map[string]any)
	for t.dec.More() {
		tok, err := t.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("source: expected object key at %s", displayPath(path))
		}
		child := childPath(path, key)
		if _, dup := out[key]; dup && !t.opts.duplicates {
			return nil, &DuplicateKeyError{Key: key, Path: child}
		}
		v, err := t.value(child)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	if err := t.closing(); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *jsonTree) array(path string) (any, error) {
	out := make([]any, 0)
	for i := 0; t.dec.More(); i++ {
		v, err := t.value(path + "/" + strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := t.closing(); err != nil {
		return nil, err
	}
	return out, nil
}

// closing consumes the delimiter ending the current container.
func (t *jsonTree) closing() error {
	_, err := t.dec.Token()
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
