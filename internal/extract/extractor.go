package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/foerderdata/fundwatch/internal/domain"
)

// siteBase prefixes relative further-link URLs found on detail pages.
const siteBase = "https://www.foerderdatenbank.de/"

var (
	phoneRe = regexp.MustCompile(`Tel:\s*(.*)`)
	faxRe   = regexp.MustCompile(`Fax:\s*(.*)`)
)

// Extractor parses program detail pages into domain.Program records.
type Extractor struct{}

// NewExtractor creates a new detail-page extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses the HTML of one detail page. Identity fields and the
// checksum are not set here; the caller derives them from pageURL and
// the extracted content. Returns ErrUnknownCategory (wrapped) when the
// page carries a field label outside the known set.
func (e *Extractor) Extract(pageURL string, body []byte) (*domain.Program, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}

	program := &domain.Program{URL: pageURL}
	program.Title = strings.TrimSpace(doc.Find("h1.title").First().Text())

	if err := e.extractArticles(doc, program); err != nil {
		return nil, err
	}
	if err := e.extractDetails(doc, program); err != nil {
		return nil, err
	}

	return program, nil
}

// extractArticles fills the tabbed article bodies (description, legal
// basis, supplementary info). Pages without tabs carry a single content
// block that is treated as the description.
func (e *Extractor) extractArticles(doc *goquery.Document, program *domain.Program) error {
	tabs := doc.Find("main h2 span.tab--title")

	if tabs.Length() == 0 {
		// Workaround for pages without tabs.
		block := doc.Find("main div.jumbotron ~ div div.content").First()
		if html := outerHTML(block); html != "" {
			program.Description = &html
		}
		return nil
	}

	articles := doc.Find("div.content article")

	var tabErr error
	tabs.EachWithBreak(func(i int, tab *goquery.Selection) bool {
		category, err := ParseLabel(tab.Text())
		if err != nil {
			tabErr = err
			return false
		}

		article := articles.Eq(i)
		html := outerHTML(article)
		if html == "" {
			return true
		}

		switch category {
		case CategoryDescription:
			program.Description = &html
		case CategoryMoreInfo:
			program.MoreInfo = &html
		case CategoryLegalBasis:
			program.LegalBasis = &html
		default:
			// A known non-article category rendered as a tab; its value
			// is carried by the definition list instead.
		}
		return true
	})

	return tabErr
}

// extractDetails walks the definition list of program metadata, pairing
// each dt label with its dd value.
func (e *Extractor) extractDetails(doc *goquery.Document, program *domain.Program) error {
	dts := doc.Find("dt")
	dds := doc.Find("dd")

	var detailErr error
	dts.EachWithBreak(func(i int, dt *goquery.Selection) bool {
		if i >= dds.Length() {
			return false
		}

		label := strings.TrimSpace(dt.Text())
		if label == "" {
			return true
		}

		category, err := ParseLabel(label)
		if err != nil {
			detailErr = err
			return false
		}

		e.applyDetail(program, category, dds.Eq(i))
		return true
	})

	return detailErr
}

// applyDetail stores one dd value on the program under its category.
func (e *Extractor) applyDetail(program *domain.Program, category Category, dd *goquery.Selection) {
	switch {
	case category.IsList():
		values := splitList(ownText(dd))
		switch category {
		case CategoryFundingType:
			program.FundingType = values
		case CategoryFundingArea:
			program.FundingArea = values
		case CategoryFundingLocation:
			program.FundingLocation = values
		case CategoryEligibleApplicants:
			program.EligibleApplicants = values
		}

	case category == CategoryFundingBody:
		text := strings.TrimSpace(dd.Find("p.card--title a[title='Öffnet die Einzelsicht'] span.link--label").Text())
		if text != "" {
			program.FundingBody = &text
		}

	case category == CategoryFurtherLinks:
		program.FurtherLinks = extractLinks(dd)

	case category == CategoryContactInfo:
		e.extractContact(program, dd)

	default:
		// Remaining categories are article tabs; a dt carrying one of
		// their labels has no dd representation and is ignored.
	}
}

// extractContact fills the contact sub-fields from the contact block.
func (e *Extractor) extractContact(program *domain.Program, dd *goquery.Selection) {
	setString := func(dst **string, value string) {
		value = strings.TrimSpace(value)
		if value != "" {
			*dst = &value
		}
	}

	institution := strings.Join(strings.Fields(
		dd.Find("a[title='Öffnet die Einzelsicht'] span.link--label").Text()), " ")
	setString(&program.ContactInstitution, institution)

	setString(&program.ContactStreet, dd.Find("p.adr").First().Text())
	setString(&program.ContactCity, dd.Find("p.locality").First().Text())
	setString(&program.ContactFax, firstSubmatch(faxRe, dd.Find("p.fax").First().Text()))
	setString(&program.ContactPhone, firstSubmatch(phoneRe, dd.Find("p.tel").First().Text()))

	if href, ok := dd.Find("p.email a[href]").First().Attr("href"); ok {
		setString(&program.ContactEmail, strings.TrimPrefix(href, "mailto:"))
	}
	if href, ok := dd.Find("p.website a[href]").First().Attr("href"); ok {
		setString(&program.ContactWebsite, href)
	}
}

// extractLinks collects the hrefs of a further-links block, resolving
// relative URLs against the site base.
func extractLinks(dd *goquery.Selection) domain.StringList {
	var links domain.StringList

	dd.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = siteBase + href
		}
		links = append(links, href)
	})

	return links
}

// splitList splits a comma-separated dd value into its items.
func splitList(text string) domain.StringList {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return domain.StringList(strings.Split(text, ", "))
}

// ownText returns the node's direct text content, excluding children
// such as nested link cards.
func ownText(sel *goquery.Selection) string {
	var out strings.Builder
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "#text" {
			out.WriteString(node.Text())
		}
	})
	return out.String()
}

// outerHTML renders a selection including its own tag, trimmed. Returns
// the empty string when the selection is empty or rendering fails.
func outerHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(html)
}

// firstSubmatch returns the first capture group of re in text.
func firstSubmatch(re *regexp.Regexp, text string) string {
	match := re.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}
