package keys_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/kvbucket/storage/kv/keys"
)

func TestInc(t *testing.T) {
	testCases := map[string]struct {
		key      []byte
		expected keys.Key
		ok       bool
	}{
		"simple": {
			key:      []byte("abc"),
			expected: keys.Key("abd"),
			ok:       true,
		},
		"carry": {
			key:      []byte{0x04, 0xff},
			expected: keys.Key{0x05, 0x00},
			ok:       true,
		},
		"carry-twice": {
			key:      []byte{0x01, 0xff, 0xff},
			expected: keys.Key{0x02, 0x00, 0x00},
			ok:       true,
		},
		"separator": {
			key:      []byte("users."),
			expected: keys.Key("users/"),
			ok:       true,
		},
		"all-max": {
			key: []byte{0xff, 0xff},
			ok:  false,
		},
		"empty": {
			key: []byte{},
			ok:  false,
		},
		"nil": {
			key: nil,
			ok:  false,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			original := keys.Concat(testCase.key, nil)
			next, ok := keys.Inc(testCase.key)

			if ok != testCase.ok {
				t.Fatalf("expected ok = %v, got %v", testCase.ok, ok)
			}

			if diff := cmp.Diff(testCase.expected, next); diff != "" {
				t.Fatal(diff)
			}

			if diff := cmp.Diff(original, keys.Concat(testCase.key, nil)); diff != "" {
				t.Fatalf("Inc modified its input: %s", diff)
			}
		})
	}
}

func TestIncBoundsPrefixedKeys(t *testing.T) {
	prefixes := [][]byte{
		[]byte("a."),
		[]byte("users."),
		{0x00},
		{0x7f, 0xff},
		{0xfe, 0xff, 0xff},
		{0x00, 0xff, '.'},
	}
	suffixes := [][]byte{
		nil,
		{0x00},
		{0xff},
		{0xff, 0xff, 0xff, 0xff},
		[]byte("zzzzzzzz"),
	}

	for _, prefix := range prefixes {
		next, ok := keys.Inc(prefix)

		if !ok {
			t.Fatalf("expected %v to have a successor", prefix)
		}

		if keys.HasPrefix(next, prefix) {
			t.Fatalf("Inc(%v) = %v still has the prefix", prefix, next)
		}

		for _, suffix := range suffixes {
			k := keys.Concat(prefix, suffix)

			if !keys.HasPrefix(k, prefix) {
				t.Fatalf("expected %v to have prefix %v", k, prefix)
			}

			if keys.Compare(k, next) >= 0 {
				t.Fatalf("expected %v < Inc(%v) = %v", k, prefix, next)
			}
		}
	}
}

func TestHasPrefix(t *testing.T) {
	if !keys.HasPrefix([]byte("abc"), []byte("ab")) {
		t.Fatalf("expected ab to be a prefix of abc")
	}

	if !keys.HasPrefix([]byte("abc"), nil) {
		t.Fatalf("expected the empty key to be a prefix of every key")
	}

	if keys.HasPrefix([]byte("ab"), []byte("abc")) {
		t.Fatalf("a longer key cannot be a prefix")
	}

	if keys.HasPrefix([]byte("ab.x"), []byte("a.")) {
		t.Fatalf("a. is not a prefix of ab.x")
	}
}

func TestSuffix(t *testing.T) {
	name := []byte("users")
	suffixed := keys.Suffix(name, '.')

	if diff := cmp.Diff(keys.Key("users."), suffixed); diff != "" {
		t.Fatal(diff)
	}

	if diff := cmp.Diff([]byte("users"), name); diff != "" {
		t.Fatalf("Suffix modified its input: %s", diff)
	}
}

func TestRange(t *testing.T) {
	testCases := map[string]struct {
		r        keys.Range
		expected keys.Range
	}{
		"all": {
			r:        keys.All(),
			expected: keys.Range{},
		},
		"gte": {
			r:        keys.All().Gte([]byte("b")),
			expected: keys.Range{Min: []byte("b")},
		},
		"gt": {
			r:        keys.All().Gt([]byte("b")),
			expected: keys.Range{Min: []byte{'b', 0}},
		},
		"lt": {
			r:        keys.All().Lt([]byte("d")),
			expected: keys.Range{Max: []byte("d")},
		},
		"lte": {
			r:        keys.All().Lte([]byte("d")),
			expected: keys.Range{Max: []byte{'d', 0}},
		},
		"eq": {
			r:        keys.All().Eq([]byte("c")),
			expected: keys.Range{Min: []byte("c"), Max: []byte{'c', 0}},
		},
		"narrowing-keeps-tighter-bound": {
			r:        keys.All().Gte([]byte("c")).Gte([]byte("a")).Lt([]byte("x")).Lt([]byte("z")),
			expected: keys.Range{Min: []byte("c"), Max: []byte("x")},
		},
		"prefix": {
			r:        keys.All().Prefix([]byte("ab")),
			expected: keys.Range{Min: []byte("ab"), Max: []byte("ac")},
		},
		"prefix-overflow": {
			r:        keys.All().Prefix([]byte{0xff}),
			expected: keys.Range{Min: []byte{0xff}},
		},
		"namespace-all": {
			r:        keys.All().Namespace([]byte("a.")),
			expected: keys.Range{Min: []byte("a."), Max: []byte("a/")},
		},
		"namespace-bounded": {
			r:        keys.All().Gte([]byte("b")).Lt([]byte("d")).Namespace([]byte("a.")),
			expected: keys.Range{Min: []byte("a.b"), Max: []byte("a.d")},
		},
		"namespace-root": {
			r:        keys.All().Namespace(nil),
			expected: keys.Range{Min: []byte{}},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(testCase.expected, testCase.r); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	r := keys.All().Gte([]byte("b")).Lt([]byte("d"))

	for k, expected := range map[string]bool{
		"a":  false,
		"b":  true,
		"c":  true,
		"cz": true,
		"d":  false,
		"e":  false,
	} {
		if r.Contains([]byte(k)) != expected {
			t.Errorf("expected Contains(%s) = %v", k, expected)
		}
	}

	if !keys.All().Contains([]byte{0xff, 0xff}) {
		t.Errorf("an unbounded range contains everything")
	}

	if keys.All().Gte([]byte("b")).Lt([]byte("b")).Empty() != true {
		t.Errorf("expected [b, b) to be empty")
	}
}
