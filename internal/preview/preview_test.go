package preview

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextAndImage(t *testing.T) {
	got := Extract(`<p>Hello <b>world</b></p><img alt="cat">`, 150)
	assert.Equal(t, "Hello world [cat]", got)
}

func TestExtractImageWithoutAlt(t *testing.T) {
	got := Extract(`<p>look</p><img src="x.png">`, 150)
	assert.Equal(t, "look [image]", got)
}

func TestExtractInlineMarkupKeepsWordsIntact(t *testing.T) {
	// inline elements must not split a word
	assert.Equal(t, "world", Extract(`<p>wor<b>ld</b></p>`, 150))
}

func TestExtractBlockBoundaries(t *testing.T) {
	got := Extract(`<p>one</p><p>two</p><ul><li>three</li><li>four</li></ul>`, 150)
	assert.Equal(t, "one two three four", got)
}

func TestExtractCodeBlock(t *testing.T) {
	got := Extract(`<p>see</p><pre><code>func main() {}</code></pre>`, 150)
	assert.Equal(t, "see [code]", got)

	// inline code keeps its text
	got = Extract(`<p>run <code>go vet</code> first</p>`, 150)
	assert.Equal(t, "run go vet first", got)
}

func TestExtractSkipsScriptAndStyle(t *testing.T) {
	got := Extract(`<style>.x{color:red}</style><script>alert(1)</script><p>safe</p>`, 150)
	assert.Equal(t, "safe", got)
}

func TestExtractAttachments(t *testing.T) {
	got := Extract(`<a href="/user_uploads/2/ab/photo.png">photo.png</a>`, 150)
	assert.Equal(t, "📷 photo.png", got)

	got = Extract(`<p>as discussed</p><a href="/user_uploads/2/ab/report.pdf">report.pdf</a>`, 150)
	assert.Equal(t, "as discussed 📎 report.pdf", got)
}

func TestExtractExternalLinkMentioningUploadsPathKeepsText(t *testing.T) {
	// only server-local upload paths are attachments; an external URL that
	// happens to contain the segment is an ordinary link
	got := Extract(`<a href="https://example.com/user_uploads/x.png">the picture</a>`, 150)
	assert.Equal(t, "the picture", got)
}

func TestExtractRegularLinkKeepsText(t *testing.T) {
	got := Extract(`<p>see <a href="https://example.com/doc">the doc</a></p>`, 150)
	assert.Equal(t, "see the doc", got)
}

func TestExtractCollapsesWhitespace(t *testing.T) {
	got := Extract("<p>a\n\n   b\t\tc</p>", 150)
	assert.Equal(t, "a b c", got)
}

func TestExtractTruncation(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := Extract("<p>"+long+"</p>", 150)

	require.LessOrEqual(t, utf8.RuneCountInString(got), 150)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, 150, utf8.RuneCountInString(got))
}

func TestExtractNoEllipsisWhenContentFits(t *testing.T) {
	got := Extract("<p>short</p>", 150)
	assert.Equal(t, "short", got)
	assert.False(t, strings.HasSuffix(got, "…"))
}

func TestExtractExactlyMaxLenHasNoEllipsis(t *testing.T) {
	got := Extract("<p>"+strings.Repeat("a", 150)+"</p>", 150)
	assert.Equal(t, strings.Repeat("a", 150), got)
}

func TestExtractOnePastMaxLenTruncates(t *testing.T) {
	got := Extract("<p>"+strings.Repeat("a", 151)+"</p>", 150)
	assert.Equal(t, strings.Repeat("a", 149)+"…", got)
}

func TestExtractMalformedMarkup(t *testing.T) {
	cases := []string{
		`<p>unclosed`,
		`</div>orphan close`,
		`<p><b>nested <i>wrong</b></i></p>`,
		`<weird-tag attr=>text inside</weird-tag>`,
		`plain text, no markup at all`,
	}
	for _, in := range cases {
		assert.NotPanics(t, func() { Extract(in, 150) }, in)
	}

	assert.Equal(t, "unclosed", Extract(`<p>unclosed`, 150))
	assert.Equal(t, "orphan close", Extract(`</div>orphan close`, 150))

	// unknown elements are traversed as plain containers
	assert.Equal(t, "text inside", Extract(`<weird-tag>text inside</weird-tag>`, 150))
}

func TestExtractEmptyContent(t *testing.T) {
	assert.Equal(t, "", Extract("", 150))
	assert.Equal(t, "", Extract("<p>   </p>", 150))
}

func TestExtractShortCircuitsOnLongContent(t *testing.T) {
	// content is far larger than the budget; the walk must stop early and
	// still produce a correct bounded preview
	huge := "<p>" + strings.Repeat("x", 1<<20) + "</p>"
	got := Extract(huge, 150)
	assert.Equal(t, strings.Repeat("x", 149)+"…", got)
}

func TestExtractDefaultMaxLen(t *testing.T) {
	got := Extract("<p>"+strings.Repeat("a", 500)+"</p>", 0)
	assert.Equal(t, DefaultMaxLen, utf8.RuneCountInString(got))
}
