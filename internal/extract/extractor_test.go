package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foerderdata/fundwatch/internal/domain"
	"github.com/foerderdata/fundwatch/internal/extract"
)

const detailPage = `<!DOCTYPE html>
<html lang="de">
<body>
<main>
  <h1 class="title">Digital Jetzt – Investitionsförderung für KMU</h1>

  <div class="content">
    <h2><span class="tab--title">Kurzzusammenfassung</span></h2>
    <article><p>Das BMWK fördert Investitionen in digitale Technologien.</p></article>
    <h2><span class="tab--title">Zusatzinfos</span></h2>
    <article><p>Anträge sind vor Vorhabenbeginn zu stellen.</p></article>
    <h2><span class="tab--title">Rechtsgrundlage</span></h2>
    <article><p>Förderrichtlinie vom 1. September 2020.</p></article>
  </div>

  <dl>
    <dt>Förderart:</dt>
    <dd>Zuschuss</dd>
    <dt>Förderbereich:</dt>
    <dd>Digitalisierung, Unternehmensfinanzierung</dd>
    <dt>Fördergebiet:</dt>
    <dd>bundesweit</dd>
    <dt>Förderberechtigte:</dt>
    <dd>Unternehmen</dd>
    <dt>Fördergeber:</dt>
    <dd>
      <p class="card--title">
        <a title="Öffnet die Einzelsicht" href="/FDB/DE/bmwk.html"><span class="link--label">Bundesministerium für Wirtschaft und Klimaschutz (BMWK)</span></a>
      </p>
    </dd>
    <dt>Weiterführende Links:</dt>
    <dd>
      <a href="https://www.digitaljetzt-portal.de/">Antragsportal</a>
      <a href="FDB/DE/richtlinie.html">Richtlinie</a>
    </dd>
    <dt>Ansprechpunkt:</dt>
    <dd>
      <p class="card--title">
        <a title="Öffnet die Einzelsicht" href="/FDB/DE/dlr.html"><span class="link--label">DLR
          Projektträger</span></a>
      </p>
      <p class="adr">Heinrich-Konen-Straße 1</p>
      <p class="locality">53227 Bonn</p>
      <p class="tel">Tel: 0228 3821-2222</p>
      <p class="fax">Fax: 0228 3821-1111</p>
      <p class="email"><a href="mailto:digital-jetzt@dlr.de">digital-jetzt@dlr.de</a></p>
      <p class="website"><a href="https://www.dlr-pt.de/">Website</a></p>
    </dd>
  </dl>
</main>
</body>
</html>`

func TestExtract_FullDetailPage(t *testing.T) {
	t.Parallel()

	pageURL := "https://www.foerderdatenbank.de/FDB/Content/DE/Foerderprogramm/Bund/BMWi/digital-jetzt.html"

	program, err := extract.NewExtractor().Extract(pageURL, []byte(detailPage))
	require.NoError(t, err)

	assert.Equal(t, pageURL, program.URL)
	assert.Equal(t, "Digital Jetzt – Investitionsförderung für KMU", program.Title)

	require.NotNil(t, program.Description)
	assert.Contains(t, *program.Description, "digitale Technologien")
	assert.Contains(t, *program.Description, "<article>", "article bodies keep their markup")
	require.NotNil(t, program.MoreInfo)
	assert.Contains(t, *program.MoreInfo, "Vorhabenbeginn")
	require.NotNil(t, program.LegalBasis)
	assert.Contains(t, *program.LegalBasis, "Förderrichtlinie")

	assert.Equal(t, domain.StringList{"Zuschuss"}, program.FundingType)
	assert.Equal(t, domain.StringList{"Digitalisierung", "Unternehmensfinanzierung"}, program.FundingArea)
	assert.Equal(t, domain.StringList{"bundesweit"}, program.FundingLocation)
	assert.Equal(t, domain.StringList{"Unternehmen"}, program.EligibleApplicants)

	require.NotNil(t, program.FundingBody)
	assert.Equal(t, "Bundesministerium für Wirtschaft und Klimaschutz (BMWK)", *program.FundingBody)

	assert.Equal(t, domain.StringList{
		"https://www.digitaljetzt-portal.de/",
		"https://www.foerderdatenbank.de/FDB/DE/richtlinie.html",
	}, program.FurtherLinks)

	require.NotNil(t, program.ContactInstitution)
	assert.Equal(t, "DLR Projektträger", *program.ContactInstitution, "whitespace inside the label collapses")
	require.NotNil(t, program.ContactStreet)
	assert.Equal(t, "Heinrich-Konen-Straße 1", *program.ContactStreet)
	require.NotNil(t, program.ContactCity)
	assert.Equal(t, "53227 Bonn", *program.ContactCity)
	require.NotNil(t, program.ContactPhone)
	assert.Equal(t, "0228 3821-2222", *program.ContactPhone)
	require.NotNil(t, program.ContactFax)
	assert.Equal(t, "0228 3821-1111", *program.ContactFax)
	require.NotNil(t, program.ContactEmail)
	assert.Equal(t, "digital-jetzt@dlr.de", *program.ContactEmail)
	require.NotNil(t, program.ContactWebsite)
	assert.Equal(t, "https://www.dlr-pt.de/", *program.ContactWebsite)

	assert.True(t, program.HasMinimalContent())
	assert.Empty(t, program.Checksum, "checksum is derived later, not extracted")
}

func TestExtract_PageWithoutTabs(t *testing.T) {
	t.Parallel()

	page := `<html><body><main>
	  <h1 class="title">Archiviertes Programm</h1>
	  <div class="jumbotron"></div>
	  <div><div class="content"><p>Dieses Programm ist ausgelaufen.</p></div></div>
	</main></body></html>`

	program, err := extract.NewExtractor().Extract("https://example.org/Archiv/alt.html", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, "Archiviertes Programm", program.Title)
	require.NotNil(t, program.Description)
	assert.Contains(t, *program.Description, "ausgelaufen")
	assert.Nil(t, program.MoreInfo)
	assert.Nil(t, program.LegalBasis)
}

func TestExtract_UnknownTabLabelIsFatal(t *testing.T) {
	t.Parallel()

	page := `<html><body><main>
	  <h1 class="title">Programm</h1>
	  <div class="content">
	    <h2><span class="tab--title">Bewertungskriterien</span></h2>
	    <article><p>Unbekannter Abschnitt.</p></article>
	  </div>
	</main></body></html>`

	_, err := extract.NewExtractor().Extract("https://example.org/p.html", []byte(page))
	require.ErrorIs(t, err, extract.ErrUnknownCategory)
}

func TestExtract_UnknownDetailLabelIsFatal(t *testing.T) {
	t.Parallel()

	page := `<html><body><main>
	  <h1 class="title">Programm</h1>
	  <dl><dt>Antragsfrist:</dt><dd>31.12.2026</dd></dl>
	</main></body></html>`

	_, err := extract.NewExtractor().Extract("https://example.org/p.html", []byte(page))
	require.ErrorIs(t, err, extract.ErrUnknownCategory)
}

func TestExtract_MinimalPage(t *testing.T) {
	t.Parallel()

	page := `<html><body><main><h1 class="title">Nur ein Titel</h1></main></body></html>`

	program, err := extract.NewExtractor().Extract("https://example.org/p.html", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, "Nur ein Titel", program.Title)
	assert.False(t, program.HasMinimalContent())
}
