package extractor

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/postmap/pkg/record"
)

// bodyKey is the post key the built-in functions read from.
const bodyKey = "body"

var (
	// Word characters include non-Latin letters and combining marks so
	// tags such as "#نمونه" match whole.
	hashtagPattern = regexp.MustCompile(`#[\p{L}\p{M}\p{N}_]+`)
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{M}\p{N}_]+`)
)

var builtins = map[string]Function{
	"extractHashtags": Func(ExtractHashtags),
	"extractMentions": Func(ExtractMentions),
	"extractLinks":    Func(ExtractLinks),
	"extractText":     Func(ExtractText),
	"extractMarkdown": Func(ExtractMarkdown),
}

// ExtractHashtags returns every hashtag in the post body in order of
// appearance, duplicates included.
func ExtractHashtags(rec record.Record) (any, error) {
	return findAll(hashtagPattern, record.String(rec, bodyKey)), nil
}

// ExtractMentions returns every @handle in the post body in order of appearance.
func ExtractMentions(rec record.Record) (any, error) {
	return findAll(mentionPattern, record.String(rec, bodyKey)), nil
}

func findAll(re *regexp.Regexp, text string) []any {
	matches := re.FindAllString(text, -1)
	out := make([]any, len(matches))
	for i, m := range matches {
		out[i] = m
	}
	return out
}

// ExtractLinks parses the post body as HTML and returns the href of every
// anchor in document order.
func ExtractLinks(rec record.Record) (any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(record.String(rec, bodyKey)))
	if err != nil {
		return nil, err
	}

	links := make([]any, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}
		links = append(links, strings.TrimSpace(href))
	})
	return links, nil
}

// ExtractText parses the post body as HTML and returns its text content
// with runs of whitespace collapsed.
func ExtractText(rec record.Record) (any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(record.String(rec, bodyKey)))
	if err != nil {
		return nil, err
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// ExtractMarkdown converts the HTML post body to Markdown.
func ExtractMarkdown(rec record.Record) (any, error) {
	markdown, err := md.ConvertString(record.String(rec, bodyKey))
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(markdown), nil
}
