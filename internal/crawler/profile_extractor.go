package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"linkedin-leads/internal/models"
)

const (
	maxTitleWords   = 6
	maxCompanyWords = 3
	titleCutset     = "|•-"
)

// CardParser turns one harvested card into a profile record.
// ok is false for cards that do not describe a usable profile.
type CardParser interface {
	Parse(card CardHandle) (record models.ProfileRecord, ok bool, err error)
}

// ProfileExtractor is the selector-driven CardParser: goquery pulls the text
// fragments out of the card and ParseCard applies the field heuristics.
type ProfileExtractor struct {
	selectors models.CardSelectors
	base      *url.URL
}

// NewProfileExtractor creates a new ProfileExtractor instance
func NewProfileExtractor(selectors models.CardSelectors) (*ProfileExtractor, error) {
	base, err := url.Parse(selectors.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: selectors.base_url: %v", models.ErrConfig, err)
	}
	return &ProfileExtractor{selectors: selectors, base: base}, nil
}

// Parse implements CardParser
func (pe *ProfileExtractor) Parse(card CardHandle) (models.ProfileRecord, bool, error) {
	raw, err := pe.ExtractRawCard(card)
	if err != nil {
		return models.ProfileRecord{}, false, err
	}
	record, ok := ParseCard(raw, pe.selectors.ProfileMarker)
	return record, ok, nil
}

// ExtractRawCard collects the card's text fragments and anchor targets.
// Relative anchors are resolved against the configured base URL.
func (pe *ProfileExtractor) ExtractRawCard(card CardHandle) (models.RawCard, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(card)))
	if err != nil {
		return models.RawCard{}, fmt.Errorf("%w: %v", models.ErrExtraction, err)
	}

	var raw models.RawCard
	if pe.selectors.Name != "" {
		raw.Name = doc.Find(pe.selectors.Name).First().Text()
	}
	if pe.selectors.Headline != "" {
		raw.Headline = doc.Find(pe.selectors.Headline).First().Text()
	}
	if pe.selectors.Secondary != "" {
		doc.Find(pe.selectors.Secondary).Each(func(_ int, s *goquery.Selection) {
			raw.Secondary = append(raw.Secondary, s.Text())
		})
	}
	if pe.selectors.Summary != "" {
		raw.Summary = doc.Find(pe.selectors.Summary).First().Text()
	}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			raw.Links = append(raw.Links, pe.base.ResolveReference(ref).String())
		}
	})
	return raw, nil
}

// ParseCard applies the field-splitting heuristics to one card. It is pure:
// the same RawCard always yields the same record.
//
// Headlines mix role and employer in free text, so " at " is the only split
// signal; the word caps bound the damage when it picks up an unrelated sentence.
func ParseCard(raw models.RawCard, profileMarker string) (models.ProfileRecord, bool) {
	name := strings.TrimSpace(raw.Name)
	headline := strings.TrimSpace(raw.Headline)

	var location string
	if n := len(raw.Secondary); n > 0 {
		location = strings.TrimSpace(raw.Secondary[n-1])
	}

	profileURL := ""
	for _, link := range raw.Links {
		if strings.Contains(link, profileMarker) {
			profileURL, _, _ = strings.Cut(link, "?")
			break
		}
	}

	if name == "" || profileURL == "" {
		return models.ProfileRecord{}, false
	}

	text := strings.TrimSpace(headline + " " + strings.TrimSpace(raw.Summary))
	jobTitle, company := splitHeadline(text)

	return models.ProfileRecord{
		FullName:   name,
		Headline:   headline,
		JobTitle:   jobTitle,
		Company:    company,
		Location:   location,
		ProfileURL: profileURL,
	}, true
}

func splitHeadline(text string) (jobTitle, company string) {
	parts := strings.Split(text, " at ")
	if len(parts) < 2 {
		return firstWords(cutTitle(text), maxTitleWords), ""
	}
	employer, _, _ := strings.Cut(parts[1], " - ")
	return firstWords(cutTitle(parts[0]), maxTitleWords),
		firstWords(strings.TrimSpace(employer), maxCompanyWords)
}

// cutTitle drops everything from the first |, • or - onwards
func cutTitle(s string) string {
	if i := strings.IndexAny(s, titleCutset); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
