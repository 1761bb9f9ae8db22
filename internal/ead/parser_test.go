package ead

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Veraticus/labelgene/internal/common"
	"github.com/Veraticus/labelgene/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample finding aid for testing.
const sampleEAD = `<?xml version="1.0" encoding="UTF-8"?>
<ead xmlns="urn:isbn:1-931666-22-9" xmlns:xlink="http://www.w3.org/1999/xlink">
  <eadheader>
    <eadid>mssa.ms.1234</eadid>
    <filedesc>
      <titlestmt>
        <titleproper>Guide to the Henri Chopin Papers</titleproper>
        <author>by Archival Processing Staff</author>
      </titlestmt>
    </filedesc>
  </eadheader>
  <archdesc level="collection">
    <did>
      <repository><corpname>Beinecke Rare Book and Manuscript Library</corpname></repository>
      <unittitle>Henri Chopin papers</unittitle>
      <unitid>GEN MSS 1234</unitid>
    </did>
    <dsc>
      <c01 level="series">
        <did><unitid>1</unitid><unittitle>Correspondence</unittitle></did>
        <c02 level="file">
          <did>
            <container type="Box" altrender="archive half legal">1</container>
            <container type="Folder">1</container>
            <unittitle>Letters from <persname>Pierre Garnier</persname></unittitle>
            <unitdate>1962-1964</unitdate>
          </did>
        </c02>
        <c02 level="file">
          <did>
            <container type="Box" altrender="archive half legal">1</container>
            <container type="Folder">2-4</container>
            <unittitle>Letters to publishers</unittitle>
            <unitdate>1965</unitdate>
          </did>
        </c02>
      </c01>
      <c01 level="series">
        <did><unitid>2</unitid><unittitle>Writings</unittitle><container type="Box">2</container></did>
        <c02 level="file">
          <did>
            <unittitle>Poemes sonores</unittitle>
            <physdesc><extent>2 folders</extent></physdesc>
          </did>
        </c02>
        <c02 level="file">
          <did><unittitle>Drafts</unittitle><unitdate>1970</unitdate></did>
        </c02>
      </c01>
      <c01 level="file">
        <did><container type="Box">3</container><unittitle>Photographs</unittitle></did>
      </c01>
    </dsc>
  </archdesc>
</ead>`

func parseString(t *testing.T, content string) (*model.FindingAid, error) {
	t.Helper()
	return NewParser().Parse(context.Background(), "test.xml", strings.NewReader(content))
}

func TestParser_CollectionFields(t *testing.T) {
	aid, err := parseString(t, sampleEAD)
	require.NoError(t, err)

	assert.Equal(t, "test.xml", aid.Path)
	assert.Equal(t, "Beinecke Rare Book and Manuscript Library", aid.Repository)
	assert.Equal(t, "Henri Chopin papers", aid.Collection)
	assert.Equal(t, "GEN MSS 1234", aid.CallNumber)
	assert.Equal(t, "by Archival Processing Staff", aid.Author)
}

func TestParser_Items(t *testing.T) {
	aid, err := parseString(t, sampleEAD)
	require.NoError(t, err)
	require.Len(t, aid.Items, 5)

	first := aid.Items[0]
	assert.Equal(t, 0, first.Ordinal)
	assert.Equal(t, "1", first.BoxLabel)
	assert.False(t, first.BoxInherited)
	assert.Equal(t, "1", first.FolderText)
	assert.Equal(t, "archive half legal", first.ContainerType)
	assert.Equal(t, "Letters from Pierre Garnier", first.Title)
	assert.Equal(t, "1962-1964", first.Date)
	assert.Equal(t, []string{"Series I. Correspondence"}, first.Ancestors)
	assert.Equal(t, 0, first.Position)

	second := aid.Items[1]
	assert.Equal(t, "2-4", second.FolderText)
	assert.Equal(t, 1, second.Position)

	inherited := aid.Items[2]
	assert.Equal(t, "2", inherited.BoxLabel)
	assert.True(t, inherited.BoxInherited)
	assert.Equal(t, 2, inherited.ExtentCount)
	assert.Equal(t, "", inherited.FolderText)
	assert.Equal(t, model.DateUnavailable, inherited.Date)
	assert.Equal(t, []string{"Series II. Writings"}, inherited.Ancestors)

	drafts := aid.Items[3]
	assert.Equal(t, "2", drafts.BoxLabel)
	assert.Equal(t, "1970", drafts.Date)
	assert.Equal(t, 0, drafts.ExtentCount)

	topLevel := aid.Items[4]
	assert.Equal(t, "3", topLevel.BoxLabel)
	assert.Empty(t, topLevel.Ancestors)
	assert.Equal(t, 2, topLevel.Position)
	assert.Equal(t, 4, topLevel.Ordinal)
}

func TestParser_Defaults(t *testing.T) {
	content := `<ead><archdesc level="collection"><did/><dsc>
	  <c><did><container type="Folder">7</container></did></c>
	</dsc></archdesc></ead>`

	aid, err := parseString(t, content)
	require.NoError(t, err)

	assert.Equal(t, model.UnknownRepository, aid.Repository)
	assert.Equal(t, model.UnknownCollection, aid.Collection)
	assert.Equal(t, model.UnknownCallNumber, aid.CallNumber)
	assert.Equal(t, model.UnknownAuthor, aid.Author)

	require.Len(t, aid.Items, 1)
	item := aid.Items[0]
	assert.Equal(t, "", item.BoxLabel)
	assert.Equal(t, "7", item.FolderText)
	assert.Equal(t, model.TitleUnavailable, item.Title)
	assert.Equal(t, model.DateUnavailable, item.Date)
}

func TestParser_PrefixedNamespace(t *testing.T) {
	content := `<ead:ead xmlns:ead="urn:isbn:1-931666-22-9">
	  <ead:archdesc level="collection">
	    <ead:did><ead:unittitle>Prefixed papers</ead:unittitle></ead:did>
	    <ead:dsc>
	      <ead:c01><ead:did><ead:container type="box">4</ead:container><ead:unittitle>One</ead:unittitle></ead:did></ead:c01>
	    </ead:dsc>
	  </ead:archdesc>
	</ead:ead>`

	aid, err := parseString(t, content)
	require.NoError(t, err)
	assert.Equal(t, "Prefixed papers", aid.Collection)
	require.Len(t, aid.Items, 1)
	assert.Equal(t, "4", aid.Items[0].BoxLabel)
}

func TestParser_NoContainerList(t *testing.T) {
	aid, err := parseString(t, `<ead><archdesc><did><unittitle>Empty</unittitle></did></archdesc></ead>`)
	require.NoError(t, err)
	assert.Empty(t, aid.Items)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIs  error
	}{
		{
			name:    "not well-formed",
			content: `<ead><archdesc></ead>`,
			wantIs:  common.ErrParse,
		},
		{
			name:    "wrong root",
			content: `<mods><titleInfo/></mods>`,
			wantIs:  common.ErrNotEAD,
		},
		{
			name:    "empty document",
			content: ``,
			wantIs:  common.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseString(t, tt.content)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.ErrorIs(t, err, common.ErrParse)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, "test.xml", parseErr.Path)
		})
	}
}

func TestParser_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseBytes(ctx, "test.xml", []byte(sampleEAD))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractor_BoxFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		did     string
		wantBox string
	}{
		{
			name:    "box container",
			did:     `<container type="box">12</container><container type="folder">3</container>`,
			wantBox: "12",
		},
		{
			name:    "box type is case insensitive",
			did:     `<container type="BOX">12A</container>`,
			wantBox: "12A",
		},
		{
			name:    "non-folder container used when no box",
			did:     `<container type="folder">3</container><container type="Oversize">123 (Art)</container>`,
			wantBox: "123 (Art)",
		},
		{
			name:    "container without type",
			did:     `<container>9</container>`,
			wantBox: "9",
		},
		{
			name:    "folder only",
			did:     `<container type="folder">3</container>`,
			wantBox: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `<ead><archdesc><dsc><c01><did>` + tt.did + `</did></c01></dsc></archdesc></ead>`
			aid, err := parseString(t, content)
			require.NoError(t, err)
			require.Len(t, aid.Items, 1)
			assert.Equal(t, tt.wantBox, aid.Items[0].BoxLabel)
		})
	}
}

func TestExtractor_ExtentCount(t *testing.T) {
	tests := []struct {
		extent string
		want   int
	}{
		{extent: "3 folders", want: 3},
		{extent: "1 Folder", want: 1},
		{extent: "0.5 linear feet", want: 0},
		{extent: "0 folders", want: 0},
		{extent: "12 items", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.extent, func(t *testing.T) {
			content := `<ead><archdesc><dsc><c01><did><physdesc><extent>` + tt.extent +
				`</extent></physdesc></did></c01></dsc></archdesc></ead>`
			aid, err := parseString(t, content)
			require.NoError(t, err)
			require.Len(t, aid.Items, 1)
			assert.Equal(t, tt.want, aid.Items[0].ExtentCount)
		})
	}
}

func TestExtractor_AncestorLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<ead><archdesc><dsc>`)
	for i := 1; i <= 7; i++ {
		b.WriteString(`<c><did><unittitle>Level ` + string(rune('0'+i)) + `</unittitle></did>`)
	}
	b.WriteString(`<c><did><unittitle>Leaf</unittitle></did></c>`)
	for i := 1; i <= 7; i++ {
		b.WriteString(`</c>`)
	}
	b.WriteString(`</dsc></archdesc></ead>`)

	aid, err := parseString(t, b.String())
	require.NoError(t, err)
	require.Len(t, aid.Items, 1)
	assert.Equal(t, []string{"Level 1", "Level 2", "Level 3", "Level 4", "Level 5"}, aid.Items[0].Ancestors)
}

func TestSeriesTitle(t *testing.T) {
	tests := []struct {
		unitid string
		title  string
		want   string
	}{
		{unitid: "4", title: "Printed material", want: "Series IV. Printed material"},
		{unitid: "40", title: "Late additions", want: "Series XL. Late additions"},
		{unitid: "41", title: "Accession 41", want: "Accession 41"},
		{unitid: "A", title: "Audiovisual", want: "Series A. Audiovisual"},
		{unitid: "0", title: "Unprocessed", want: "Series 0. Unprocessed"},
		{unitid: "-2", title: "Withdrawn", want: "Series -2. Withdrawn"},
		{unitid: " 3 ", title: "Music", want: "Series III. Music"},
	}

	for _, tt := range tests {
		t.Run(tt.unitid, func(t *testing.T) {
			assert.Equal(t, tt.want, seriesTitle(tt.unitid, tt.title))
		})
	}
}

func TestRoman(t *testing.T) {
	tests := map[int]string{
		1:    "I",
		4:    "IV",
		9:    "IX",
		14:   "XIV",
		39:   "XXXIX",
		40:   "XL",
		1994: "MCMXCIV",
		0:    "0",
		4000: "4000",
	}
	for n, want := range tests {
		assert.Equal(t, want, Roman(n), "Roman(%d)", n)
	}
}
