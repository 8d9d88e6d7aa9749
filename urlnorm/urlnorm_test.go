package urlnorm

import (
	"net/url"
	"testing"

	check "gopkg.in/check.v1"
)

var (
	_ = check.Suite(new(normalizeTestSuite))
	_ = check.Suite(new(absoluteURLTestSuite))
)

func Test(t *testing.T) {
	check.TestingT(t)
}

type normalizeTestSuite struct{}

func (s *normalizeTestSuite) TestNormalize(c *check.C) {
	specs := []struct {
		in  string
		exp string
	}{
		{"HTTP://Example.COM", "http://example.com/"},
		{"http://example.com:80/a", "http://example.com/a"},
		{"https://example.com:443/a?b=1", "https://example.com/a?b=1"},
		{"https://example.com:8443/a", "https://example.com:8443/a"},
		{"http://example.com:443/a", "http://example.com:443/a"},
		{"https://example.com/a#section", "https://example.com/a"},
		{"https://example.com/Post/", "https://example.com/Post/"},
	}

	for i, spec := range specs {
		got, err := Normalize(spec.in)
		c.Assert(err, check.IsNil)
		c.Assert(got, check.Equals, spec.exp, check.Commentf("case %d", i))
	}
}

func (s *normalizeTestSuite) TestNormalizeInvalidURL(c *check.C) {
	_, err := Normalize("http://[::1")
	c.Assert(err, check.NotNil)
}

func (s *normalizeTestSuite) TestIsSameSite(c *check.C) {
	c.Assert(IsSameSite("example.com", "example.com"), check.Equals, true)
	c.Assert(IsSameSite("blog.Example.com", "example.com"), check.Equals, true)
	c.Assert(IsSameSite("notexample.com", "example.com"), check.Equals, false)
	c.Assert(IsSameSite("example.com", "blog.example.com"), check.Equals, false)
	c.Assert(IsSameSite("", "example.com"), check.Equals, false)
}

func (s *normalizeTestSuite) TestPath(c *check.C) {
	p, err := Path("https://example.com")
	c.Assert(err, check.IsNil)
	c.Assert(p, check.Equals, "/")

	p, err = Path("https://example.com/posts/deep-dive?x=1")
	c.Assert(err, check.IsNil)
	c.Assert(p, check.Equals, "/posts/deep-dive")
}

func (s *normalizeTestSuite) TestTrailingSlashVariant(c *check.C) {
	c.Assert(TrailingSlashVariant("/post"), check.Equals, "/post/")
	c.Assert(TrailingSlashVariant("/post/"), check.Equals, "/post")
	c.Assert(TrailingSlashVariant("/"), check.Equals, "/")
}

type absoluteURLTestSuite struct{}

func (s *absoluteURLTestSuite) TestNetworkPathReference(c *check.C) {
	assertOnAbsoluteURL(c, "https://www.example.com/users", "//www.myshop.com/users", "https://www.myshop.com/users")
	assertOnAbsoluteURL(c, "http://www.example.com/users", "//www.myshop.com/users", "http://www.myshop.com/users")
}

func (s *absoluteURLTestSuite) TestAbsoluteTarget(c *check.C) {
	assertOnAbsoluteURL(c, "https://www.example.com/users", "https://www.myshop.com/users", "https://www.myshop.com/users")
}

func (s *absoluteURLTestSuite) TestRelativeTarget(c *check.C) {
	assertOnAbsoluteURL(c, "http://example.com/foo/", "bar/baz", "http://example.com/foo/bar/baz")
	assertOnAbsoluteURL(c, "http://example.com/foo/", "/bar/baz", "http://example.com/bar/baz")
	assertOnAbsoluteURL(c, "http://example.com/foo/secret/", "./bar/baz", "http://example.com/foo/secret/bar/baz")

	// Without a trailing slash "secret" is a file and the target is relative
	// to its parent.
	assertOnAbsoluteURL(c, "http://example.com/foo/secret", "./bar/baz", "http://example.com/foo/bar/baz")
}

func (s *absoluteURLTestSuite) TestEmptyTarget(c *check.C) {
	assertOnAbsoluteURL(c, "http://example.com/foo/", "   ", "")
}

func assertOnAbsoluteURL(c *check.C, base, target, expected string) {
	baseURL, err := url.Parse(base)
	c.Assert(err, check.IsNil)

	var got string
	if resolved := Absolute(baseURL, target); resolved != nil {
		got = resolved.String()
	}

	c.Assert(got, check.Equals, expected)
}
