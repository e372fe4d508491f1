package mcp

import "testing"

func TestResolveLimit(t *testing.T) {
	intp := func(v int) *int { return &v }
	cases := []struct {
		name   string
		limit  *int
		def    int
		max    int
		expect int
	}{
		{name: "omitted uses default", limit: nil, def: 5, max: 25, expect: 5},
		{name: "zero yields empty", limit: intp(0), def: 5, max: 25, expect: 0},
		{name: "negative yields empty", limit: intp(-3), def: 5, max: 25, expect: 0},
		{name: "in range passes through", limit: intp(7), def: 5, max: 25, expect: 7},
		{name: "max boundary", limit: intp(25), def: 5, max: 25, expect: 25},
		{name: "above max clamps", limit: intp(100), def: 5, max: 25, expect: 25},
		{name: "follow-up bound", limit: intp(21), def: 5, max: 20, expect: 20},
	}
	for _, tc := range cases {
		if got := resolveLimit(tc.limit, tc.def, tc.max); got != tc.expect {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.expect)
		}
	}
}
