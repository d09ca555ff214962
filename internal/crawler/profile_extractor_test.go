package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-leads/internal/config"
	"linkedin-leads/internal/models"
)

const marker = "linkedin.com/in/"

func card(headline, summary string) models.RawCard {
	return models.RawCard{
		Name:      "Asha Rao",
		Headline:  headline,
		Secondary: []string{headline, "Bangalore, India"},
		Links:     []string{"https://www.linkedin.com/in/asha-rao?miniProfileUrn=urn%3Ali"},
		Summary:   summary,
	}
}

func TestParseCardSplitHeuristic(t *testing.T) {
	tests := []struct {
		name        string
		headline    string
		summary     string
		wantTitle   string
		wantCompany string
	}{
		{
			name:        "role at company",
			headline:    "Lead Software Engineer at Infosys Technologies",
			wantTitle:   "Lead Software Engineer",
			wantCompany: "Infosys Technologies",
		},
		{
			name:      "no employer, pipe delimiter",
			headline:  "Senior Engineer | Building Scalable Systems",
			wantTitle: "Senior Engineer",
		},
		{
			name:      "eight word title capped at six",
			headline:  "Principal Staff Distributed Systems Platform Reliability Infrastructure Engineer",
			wantTitle: "Principal Staff Distributed Systems Platform Reliability",
		},
		{
			name:        "company capped at three words and cut at dash",
			headline:    "Consultant at Tata Consultancy Services Limited - Pune",
			wantTitle:   "Consultant",
			wantCompany: "Tata Consultancy Services",
		},
		{
			name:        "title cut at bullet before employer",
			headline:    "Recruiter • Hiring Now at Globex",
			wantTitle:   "Recruiter",
			wantCompany: "Globex",
		},
		{
			name:        "summary completes the headline",
			headline:    "Founder",
			summary:     "at Acme Robotics",
			wantTitle:   "Founder",
			wantCompany: "Acme Robotics",
		},
		{
			name:      "hyphen inside a word still cuts the title",
			headline:  "Full-Stack Developer",
			wantTitle: "Full",
		},
		{
			name: "empty headline",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCard(card(tt.headline, tt.summary), marker)
			require.True(t, ok)
			assert.Equal(t, tt.wantTitle, got.JobTitle)
			assert.Equal(t, tt.wantCompany, got.Company)
		})
	}
}

func TestParseCardFields(t *testing.T) {
	raw := models.RawCard{
		Name:      "  Asha Rao ",
		Headline:  " Lead Software Engineer at Infosys Technologies ",
		Secondary: []string{"Lead Software Engineer at Infosys Technologies", "Java • Kubernetes", " Bangalore, India "},
		Links: []string{
			"https://www.linkedin.com/company/infosys",
			"https://www.linkedin.com/in/asha-rao?miniProfileUrn=urn",
			"https://www.linkedin.com/in/someone-else",
		},
	}

	got, ok := ParseCard(raw, marker)
	require.True(t, ok)
	assert.Equal(t, models.ProfileRecord{
		FullName:   "Asha Rao",
		Headline:   "Lead Software Engineer at Infosys Technologies",
		JobTitle:   "Lead Software Engineer",
		Company:    "Infosys Technologies",
		Location:   "Bangalore, India",
		ProfileURL: "https://www.linkedin.com/in/asha-rao",
	}, got)
}

func TestParseCardDiscards(t *testing.T) {
	noLink := card("Engineer", "")
	noLink.Links = []string{"https://www.linkedin.com/company/acme"}
	_, ok := ParseCard(noLink, marker)
	assert.False(t, ok, "card without a profile link is discarded")

	noName := card("Engineer", "")
	noName.Name = "   "
	_, ok = ParseCard(noName, marker)
	assert.False(t, ok, "card without a name is discarded")
}

func TestParseCardIsDeterministic(t *testing.T) {
	raw := card("Data Scientist at Contoso", "Machine learning - NLP")
	first, _ := ParseCard(raw, marker)
	second, _ := ParseCard(raw, marker)
	assert.Equal(t, first, second)
}

const cardHTML = `<li class="reusable-search__result-container">
  <div data-view-name="search-entity-result-universal-template">
    <a class="app-aware-link" href="/in/asha-rao/?miniProfileUrn=urn%3Ali%3Afs">
      <span aria-hidden="true">Asha Rao</span>
      <span class="visually-hidden">View Asha Rao's profile</span>
    </a>
    <div class="t-14 t-black t-normal">Lead Software Engineer at Infosys Technologies</div>
    <div class="t-14 t-normal">Bangalore, Karnataka, India</div>
    <p class="entity-result__summary--2-lines">Java - Spring</p>
  </div>
</li>`

func newTestExtractor(t *testing.T) *ProfileExtractor {
	t.Helper()
	pe, err := NewProfileExtractor(config.DefaultSelectors())
	require.NoError(t, err)
	return pe
}

func TestExtractRawCard(t *testing.T) {
	raw, err := newTestExtractor(t).ExtractRawCard(CardHandle(cardHTML))
	require.NoError(t, err)

	assert.Equal(t, "Asha Rao", raw.Name)
	assert.Equal(t, "Lead Software Engineer at Infosys Technologies", raw.Headline)
	assert.Equal(t, []string{
		"Lead Software Engineer at Infosys Technologies",
		"Bangalore, Karnataka, India",
	}, raw.Secondary)
	assert.Equal(t, "Java - Spring", raw.Summary)
	assert.Equal(t, []string{"https://www.linkedin.com/in/asha-rao/?miniProfileUrn=urn%3Ali%3Afs"}, raw.Links)
}

func TestProfileExtractorParse(t *testing.T) {
	pe := newTestExtractor(t)

	got, ok, err := pe.Parse(CardHandle(cardHTML))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Asha Rao", got.FullName)
	assert.Equal(t, "Lead Software Engineer", got.JobTitle)
	assert.Equal(t, "Infosys Technologies Java", got.Company)
	assert.Equal(t, "Bangalore, Karnataka, India", got.Location)
	assert.Equal(t, "https://www.linkedin.com/in/asha-rao/", got.ProfileURL)

	_, ok, err = pe.Parse(CardHandle(`<li><div><span>Promoted</span></div></li>`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewProfileExtractorRejectsBadBaseURL(t *testing.T) {
	sel := config.DefaultSelectors()
	sel.BaseURL = "://nope"
	_, err := NewProfileExtractor(sel)
	assert.ErrorIs(t, err, models.ErrConfig)
}
