package feed

import (
	"encoding/json"
	"io"
	"strconv"
)

// Entry is one key/count pair of an API response.
type Entry struct {
	Key   string
	Count int64
}

// RawSample holds the entries of a response object in document order.
type RawSample []Entry

// DecodeRawSample reads a JSON object of timestamp to non-negative integer. The object is read token by token so the
// order of keys survives. A repeated key keeps the position of its first occurrence and the value of its last.
func DecodeRawSample(r io.Reader) (RawSample, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, newMalformedError("reading body", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, newMalformedError("expected a JSON object", nil)
	}

	sample := RawSample{}
	seen := map[string]int{}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, newMalformedError("reading key", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, newMalformedError("expected a string key", nil)
		}

		var raw json.RawMessage
		if err = dec.Decode(&raw); err != nil {
			return nil, newMalformedError("reading value of "+strconv.Quote(key), err)
		}
		count, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil || count < 0 {
			return nil, newMalformedError("value of "+strconv.Quote(key)+" is not a non-negative integer", nil)
		}

		if i, ok := seen[key]; ok {
			sample[i].Count = count
			continue
		}
		seen[key] = len(sample)
		sample = append(sample, Entry{Key: key, Count: count})
	}

	if _, err = dec.Token(); err != nil {
		return nil, newMalformedError("unterminated object", err)
	}
	if _, err = dec.Token(); err != io.EOF {
		return nil, newMalformedError("trailing data after object", nil)
	}
	return sample, nil
}
