package robots

import "testing"

func TestParse_SelectsWildcardGroup(t *testing.T) {
	body := `User-agent: Googlebot
Disallow: /private/

User-agent: *
Disallow: /admin/
Allow: /admin/public/
`
	p := parse(body)

	if p.allows("/admin/public/page") == false {
		t.Fatalf("expected /admin/public/page to be allowed")
	}
	if p.allows("/admin/secret") {
		t.Fatalf("expected /admin/secret to be disallowed")
	}
	if !p.allows("/anything-else") {
		t.Fatalf("expected unmatched path to be allowed")
	}
}

func TestParse_EmptyBodyAllowsEverything(t *testing.T) {
	p := parse("")
	if !p.allows("/anything") {
		t.Fatalf("expected empty policy to allow everything")
	}
}

func TestPolicyAllows_LongestRuleWins(t *testing.T) {
	p := &policy{
		allowRules:    []string{"/a/b/"},
		disallowRules: []string{"/a/"},
	}

	if !p.allows("/a/b/page") {
		t.Fatalf("more specific allow rule should win")
	}
	if p.allows("/a/c/page") {
		t.Fatalf("disallow should apply outside the more specific allow")
	}
}

func TestPolicyAllows_TieFavorsAllow(t *testing.T) {
	p := &policy{
		allowRules:    []string{"/a/"},
		disallowRules: []string{"/a/"},
	}

	if !p.allows("/a/page") {
		t.Fatalf("equal-length allow/disallow should favor allow")
	}
}
