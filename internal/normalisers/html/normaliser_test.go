package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sphinxPage = `<!DOCTYPE html>
<html>
<head><title>5. Data Structures &mdash; Python 3.12 documentation</title>
<script>var x = 1;</script></head>
<body>
<div class="related" role="navigation"><ul><li><a href="index.html">index</a></li></ul></div>
<div class="document">
  <div class="documentwrapper">
    <div class="bodywrapper">
      <div class="body" role="main">
        <h1>5. Data Structures</h1>
        <p>This chapter describes some things you&#8217;ve learned about already in more detail.</p>
        <div class="highlight"><pre>&gt;&gt;&gt; fruits = ['orange', 'apple']</pre></div>
      </div>
    </div>
  </div>
  <div class="sphinxsidebar" role="navigation"><div class="sphinxsidebarwrapper"><h3>Table of Contents</h3></div></div>
</div>
<div class="footer">&copy; Copyright 2001-2024</div>
</body>
</html>`

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, "html", n.Name())
	assert.Equal(t, []string{".html", ".htm", ".xhtml"}, n.SupportedExtensions())
}

func TestNormalise_SphinxPage(t *testing.T) {
	text, err := New().Normalise(context.Background(), "datastructures.html", []byte(sphinxPage))
	require.NoError(t, err)

	assert.Equal(t,
		"5. Data Structures This chapter describes some things you’ve learned about already in more detail. >>> fruits = ['orange', 'apple']",
		text)
}

func TestClean_DropsChrome(t *testing.T) {
	text := Clean(sphinxPage)

	assert.NotContains(t, text, "Table of Contents")
	assert.NotContains(t, text, "Copyright")
	assert.NotContains(t, text, "index")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "Python 3.12 documentation")
}

func TestClean_FallsBackToDocumentDiv(t *testing.T) {
	page := `<p>outside</p><div class="document"><p>inside</p></div>`
	assert.Equal(t, "inside", Clean(page))
}

func TestClean_WholePageWithoutContentDiv(t *testing.T) {
	page := `<html><body><p>Hello</p><p>World</p></body></html>`
	assert.Equal(t, "Hello World", Clean(page))
}

func TestClean_Elements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"script removed", "<p>Before</p><script>alert('evil');</script><p>After</p>", "Before After"},
		{"style removed", "<style>.foo { color: red; }</style><p>Content</p>", "Content"},
		{"nav removed", "<nav><a>Home</a></nav><p>Content</p>", "Content"},
		{"header kept apart from head", "<header>Site</header><p>Content</p>", "Content"},
		{"comment removed", "<!-- hidden --><p>Shown</p>", "Shown"},
		{"entities decoded", "<p>a &lt; b &amp;&amp; c</p>", "a < b && c"},
		{"whitespace collapsed", "<p>  lots \n\n of\t space </p>", "lots of space"},
		{"nested chrome removed", `<div class="related"><div><p>x</p></div><p>y</p></div><p>z</p>`, "z"},
		{"single-quoted class", `<div class='footer'>f</div><p>z</p>`, "z"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Clean(tc.input))
		})
	}
}

func TestDivSpans_OutermostFirst(t *testing.T) {
	content := `<div class="a"><div class="a">in</div></div>`
	spans := divSpans(content, "a")

	require.Len(t, spans, 2)
	assert.Equal(t, 0, spans[0][0])
	assert.Equal(t, len(content), spans[0][1])
}

func TestHasClass(t *testing.T) {
	assert.True(t, hasClass(`<div class="body" role="main">`, "body"))
	assert.True(t, hasClass(`<div class="x body y">`, "body"))
	assert.False(t, hasClass(`<div class="bodywrapper">`, "body"))
	assert.False(t, hasClass(`<div id="body">`, "body"))
}
