package urlutil

import (
	"net/url"
	"testing"
)

func TestJoinPath(t *testing.T) {
	cases := []struct {
		base, path, want string
	}{
		{"https://api.example.com", "/v1/data", "https://api.example.com/v1/data"},
		{"https://api.example.com/", "v1/data", "https://api.example.com/v1/data"},
		{"https://api.example.com/v1/", "/data", "https://api.example.com/v1/data"},
		{"", "/v1/data", "/v1/data"},
		{"https://api.example.com", "https://other.example.com/x", "https://other.example.com/x"},
	}
	for _, tc := range cases {
		if got := JoinPath(tc.base, tc.path); got != tc.want {
			t.Fatalf("JoinPath(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}

func TestAppendQueryEncodesAndKeepsExisting(t *testing.T) {
	got, err := AppendQuery("https://api.example.com/search?lang=en", map[string]string{
		"q":    "a b&c",
		"page": "2",
	})
	if err != nil {
		t.Fatalf("AppendQuery returned error: %v", err)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parsing %q: %v", got, err)
	}
	q := u.Query()
	if q.Get("lang") != "en" {
		t.Fatalf("existing parameter lost: %q", got)
	}
	if q.Get("q") != "a b&c" {
		t.Fatalf("q = %q", q.Get("q"))
	}
	if q.Get("page") != "2" {
		t.Fatalf("page = %q", q.Get("page"))
	}
}

func TestAppendStructQuery(t *testing.T) {
	type listOptions struct {
		Page    int    `url:"page"`
		PerPage int    `url:"per_page"`
		Filter  string `url:"filter,omitempty"`
	}

	got, err := AppendStructQuery("https://api.example.com/items", listOptions{Page: 3, PerPage: 50})
	if err != nil {
		t.Fatalf("AppendStructQuery returned error: %v", err)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parsing %q: %v", got, err)
	}
	q := u.Query()
	if q.Get("page") != "3" || q.Get("per_page") != "50" {
		t.Fatalf("query = %q", u.RawQuery)
	}
	if q.Has("filter") {
		t.Fatalf("omitempty field encoded: %q", u.RawQuery)
	}
}
