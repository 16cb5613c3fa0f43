package articlesearch

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadArticles(t *testing.T) {
	input := `[
		{"title": " Attention is all you need ", "authors": "Vaswani et al.", "publication_date": "2017-06-12", "abstract": "Transformers", "summary": "self attention"},
		{"title": "Undated", "abstract": "No date given"},
		{"title": "Slash date", "publication_date": "06/12/2017"}
	]`

	docs, err := ReadArticles(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "Attention is all you need", docs[0].Title)
	assert.Equal(t, "Vaswani et al.", docs[0].Author)
	require.NotNil(t, docs[0].PublicationDate)
	assert.Equal(t, time.Date(2017, 6, 12, 0, 0, 0, 0, time.UTC), *docs[0].PublicationDate)
	require.NotNil(t, docs[0].Summary)
	assert.Equal(t, "self attention", *docs[0].Summary)
	assert.Nil(t, docs[0].Keywords)

	assert.Nil(t, docs[1].PublicationDate)
	assert.Nil(t, docs[1].Summary)

	require.NotNil(t, docs[2].PublicationDate)
	assert.Equal(t, "2017-06-12", docs[2].PublicationDate.Format("2006-01-02"))
}

func TestReadArticles_Errors(t *testing.T) {
	_, err := ReadArticles(strings.NewReader(`{"title": "not an array"}`))
	assert.Error(t, err)

	_, err = ReadArticles(strings.NewReader(`[{"title": "x", "publication_date": "someday"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 0")
}
