package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceHTMLContent adds loading and referrer attributes to images and
// makes external links open in a new tab.
func EnhanceHTMLContent(htmlStr string) string {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			s.SetAttr("target", "_blank")
			s.SetAttr("rel", "nofollow noopener noreferrer")
		}
	})

	// goquery wraps fragments in html/body
	out, _ := doc.Find("body").Html()
	if out == "" {
		out, _ = doc.Html()
	}
	return out
}
