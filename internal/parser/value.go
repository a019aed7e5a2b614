package parser

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// lookup follows keys through nested objects. A missing key, or a value along
// the way that is not an object, yields the zero Result (Exists reports
// false). Keys are matched literally; gjson path syntax is not interpreted.
func lookup(v gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		v = member(v, key)
		if !v.Exists() {
			return gjson.Result{}
		}
	}
	return v
}

// member returns the value stored under key in object v. Duplicate keys
// resolve to the last occurrence.
func member(v gjson.Result, key string) gjson.Result {
	if !v.IsObject() {
		return gjson.Result{}
	}

	var found gjson.Result
	v.ForEach(func(k, val gjson.Result) bool {
		if k.Str == key {
			found = val
		}
		return true
	})
	return found
}

func str(v gjson.Result, keys ...string) (string, bool) {
	r := lookup(v, keys...)
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

func optStr(v gjson.Result, keys ...string) *string {
	s, ok := str(v, keys...)
	if !ok {
		return nil
	}
	return &s
}

// int64At reads an integral JSON number. Fractions, exponents and values
// outside the int64 range count as absent.
func int64At(v gjson.Result, keys ...string) (int64, bool) {
	r := lookup(v, keys...)
	if r.Type != gjson.Number {
		return 0, false
	}
	n, err := strconv.ParseInt(r.Raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// uint64At is int64At for non-negative integers.
func uint64At(v gjson.Result, keys ...string) (uint64, bool) {
	r := lookup(v, keys...)
	if r.Type != gjson.Number {
		return 0, false
	}
	n, err := strconv.ParseUint(r.Raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// array returns the elements of the array at keys, or nil when the value is
// absent or not an array.
func array(v gjson.Result, keys ...string) []gjson.Result {
	r := lookup(v, keys...)
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}
