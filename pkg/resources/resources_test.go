package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/htft/pkg/strategy"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(StrategyCatalogue(strategy.Default()))
	r.Register(CSVFormat())

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "strategy_catalogue", list[0].Name)
	assert.Equal(t, "csv_format", list[1].Name)

	got, err := r.Read("htft://strategies")
	require.NoError(t, err)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "text/markdown", got.Contents[0].MimeType)
	assert.Contains(t, got.Contents[0].Text, "| 1 | Back Home (FT) | ft-result | false |")

	got, err = r.Read("htft://csv-format")
	require.NoError(t, err)
	assert.Contains(t, got.Contents[0].Text, "`RESULTADO HT CASA`")
	assert.Contains(t, got.Contents[0].Text, "`FTAG`")

	_, err = r.Read("htft://nope")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}
