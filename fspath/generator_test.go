package fspath_test

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/birkland/objinfo/fspath"
)

func TestGeneratorFunc(t *testing.T) {
	testID := "test ID"
	var gen fspath.Generator = fspath.GeneratorFunc(func(id string) string {
		return id
	})

	translated := gen.Generate(testID)

	if translated != testID {
		t.Fatalf("Expected %s, got %s", testID, translated)
	}
}

func TestPairtree(t *testing.T) {
	cases := []struct {
		name     string
		depth    int
		id       string
		expected string
	}{
		{"noDepth", 0, "abcdef", "abcdef"},
		{"twoLevels", 2, "abcdef", "ab/cd/abcdef"},
		{"shortID", 3, "abc", "ab/abc"},
		{"escaped", 1, "a:b", "a%/a%3Ab"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			if got := fspath.Pairtree(c.depth).Generate(c.id); got != c.expected {
				t.Errorf("Expected %s, got %s", c.expected, got)
			}
		})
	}
}

// Creates an fspath.Generator instance from the builtin uri.QueryEscape function
func ExampleGeneratorFunc() {
	var pathgen fspath.Generator = fspath.GeneratorFunc(url.QueryEscape)
	fmt.Println(pathgen.Generate("foo:bar"))
	// Output: foo%3Abar
}

func ExampleEscape() {
	fmt.Println(fspath.Escape.Generate("urn:obj/1"))
	// Output: urn%3Aobj%2F1
}
