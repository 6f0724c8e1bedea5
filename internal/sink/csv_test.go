package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aymanedev/tiktok-shop-scraper/internal/models"
)

func sampleReviews() []models.Review {
	return []models.Review{
		{
			ProductURL:       "https://shop.tiktok.com/vn/product/1",
			ProductName:      "Lancome Serum",
			ReviewerName:     "linh88",
			Rating:           "5.0",
			ReviewText:       `Tuyệt vời, "rất thích" sản phẩm này`,
			ReviewDate:       "2024-03-05",
			VerifiedPurchase: "N/A",
			HelpfulVotes:     12,
			ReviewID:         "abc123def456",
			Market:           "vn",
			ScrapedAt:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestCSVSinkWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.csv")

	require.NoError(t, NewCSVSink(path).Write(context.Background(), sampleReviews()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, csvColumns, rows[0])

	row := rows[1]
	assert.Equal(t, "https://shop.tiktok.com/vn/product/1", row[0])
	assert.Equal(t, "linh88", row[2])
	// UTF-8 text including quotes survives the round trip.
	assert.Equal(t, `Tuyệt vời, "rất thích" sản phẩm này`, row[4])
	assert.Equal(t, "12", row[7])
	assert.Equal(t, "vn", row[9])
}

func TestJSONSinkWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.json")

	require.NoError(t, NewJSONSink(path).Write(context.Background(), sampleReviews()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"review_id": "abc123def456"`)
	assert.Contains(t, string(data), "Tuyệt vời")
}
