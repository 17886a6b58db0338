package extract

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// MinContentLength is the floor below which an extraction is treated as a
// failure rather than a thin success.
const MinContentLength = 100

// ErrInsufficientContent marks an extraction that produced less text than
// the minimum viable threshold.
var ErrInsufficientContent = errors.New("insufficient content: extracted text is below the minimum threshold")

// errNoResult signals that readability produced nothing usable. The basic
// extractor is invoked on this signal and nothing else, so the fallback
// path stays auditable.
var errNoResult = errors.New("readability produced no result")

type HTMLResult struct {
	Content string
	Title   string
	Excerpt string
}

// HTML distills the main article content out of a full page. The primary
// attempt is a readability pass over the DOM; when it explicitly yields no
// result, the basic tag-stripping extractor takes over.
func HTML(html, baseURL string) (*HTMLResult, error) {
	res, err := distill(html, baseURL)
	if errors.Is(err, errNoResult) {
		res = &HTMLResult{Content: basicExtract(html)}
	} else if err != nil {
		return nil, err
	}

	if len(res.Content) < MinContentLength {
		return nil, ErrInsufficientContent
	}
	return res, nil
}

// distill runs the readability algorithm and converts the distilled
// article subtree to plain text by walking its text nodes.
func distill(html, baseURL string) (*HTMLResult, error) {
	u, _ := url.Parse(baseURL)
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return nil, errNoResult
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil, errNoResult
	}

	content := CollapseWhitespace(doc.Text())
	if content == "" {
		return nil, errNoResult
	}

	return &HTMLResult{
		Content: content,
		Title:   strings.TrimSpace(article.Title),
		Excerpt: strings.TrimSpace(article.Excerpt),
	}, nil
}

var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// basicExtract is the last-resort extractor: strip script and style
// blocks, strip remaining tags, decode the handful of entities that
// actually show up in article bodies, collapse whitespace.
func basicExtract(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = entityReplacer.Replace(text)
	return CollapseWhitespace(text)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CollapseWhitespace folds all whitespace runs into single spaces and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
