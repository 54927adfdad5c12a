package predictions_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/forecastbot/internal/adapters/predictions"
	"github.com/alejandrodnm/forecastbot/internal/domain"
)

const wideCSV = `날짜,GOOGL_Actual,GOOGL_Predicted,MSFT_Actual,MSFT_Predicted,TSLA_Actual
2025-01-07,102,110,400,,250
2025-01-06,100,95,398,401,248
2025-01-08,,112,NaN,405,251
`

func TestParse_WideTable(t *testing.T) {
	table, err := predictions.Parse(context.Background(), strings.NewReader(wideCSV), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"GOOGL", "MSFT"}, table.Instruments())

	googl, err := table.Lookup("GOOGL")
	require.NoError(t, err)
	require.Equal(t, 3, googl.Len())

	// ordenado por fecha aunque el fichero no lo esté
	assert.Equal(t, "2025-01-06", googl.Rows[0].Date.Format("2006-01-02"))
	assert.Equal(t, 100.0, googl.Rows[0].Actual.Float64)
	assert.Equal(t, 95.0, googl.Rows[0].Predicted.Float64)
	assert.False(t, googl.Rows[2].Actual.Valid)

	msft, err := table.Lookup("MSFT")
	require.NoError(t, err)
	assert.False(t, msft.Rows[1].Predicted.Valid) // celda vacía
	assert.False(t, msft.Rows[2].Actual.Valid)    // NaN

	// TSLA solo tiene _Actual
	_, err = table.Lookup("TSLA")
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestParse_EnglishDateColumn(t *testing.T) {
	in := "Date,A_Actual,A_Predicted\n2025-01-06,1,2\n"
	table, err := predictions.Parse(context.Background(), strings.NewReader(in), "")
	require.NoError(t, err)
	a, err := table.Lookup("A")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Len())
}

func TestParse_MalformedInput(t *testing.T) {
	cases := map[string]string{
		"bad date":       "날짜,A_Actual,A_Predicted\nyesterday,1,2\n",
		"bad price":      "날짜,A_Actual,A_Predicted\n2025-01-06,abc,2\n",
		"duplicate date": "날짜,A_Actual,A_Predicted\n2025-01-06,1,2\n2025-01-06,3,4\n",
		"infinite":       "날짜,A_Actual,A_Predicted\n2025-01-06,Inf,2\n",
		"no date column": "when,A_Actual,A_Predicted\n2025-01-06,1,2\n",
		"ragged row":     "날짜,A_Actual,A_Predicted\n2025-01-06,1\n",
		"empty":          "",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := predictions.Parse(context.Background(), strings.NewReader(in), "")
			assert.ErrorIs(t, err, domain.ErrMalformedInput)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	table, err := predictions.Parse(context.Background(), strings.NewReader("날짜,A_Actual,A_Predicted\n"), "")
	require.NoError(t, err)
	a, err := table.Lookup("A")
	require.NoError(t, err)
	assert.Zero(t, a.Len())
}

func TestFileSource_LoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predicted_stock.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeff"+wideCSV), 0o644))

	table, err := predictions.NewFileSource(path, "").LoadTable(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Series, 2)

	_, err = predictions.NewFileSource(filepath.Join(t.TempDir(), "nope.csv"), "").LoadTable(context.Background())
	assert.Error(t, err)
}
