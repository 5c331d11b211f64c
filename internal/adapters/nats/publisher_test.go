package natsadapter

import "testing"

func TestSubjectToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"X7", "X7"},
		{"500", "500"},
		{"X7 Express", "X7-Express"},
		{"4.1", "4-1"},
		{"a*b>c", "a-b-c"},
		{"", "unknown"},
	}
	for _, c := range cases {
		if got := subjectToken(c.in); got != c.want {
			t.Errorf("subjectToken(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
