package server

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Simulated marketing trend data. Shape is fixed; values are sampled
// per request until a real data source is wired in.

var (
	trendTopics = []string{
		"AI & Automation", "Sustainability", "Remote Work", "Mental Health",
		"Digital Privacy", "Personalization", "Voice Commerce", "Social Commerce",
	}
	contentFormats = []string{
		"Video Content", "Interactive Posts", "Stories",
		"Carousel Posts", "Live Streams", "Podcasts",
	}
	trendRegions    = []string{"North America", "Europe", "Asia Pacific", "Latin America", "Global"}
	trendIndustries = []string{"Technology", "Healthcare", "Finance", "Retail", "Education", "Entertainment"}
)

func (h *Handler) Trends(c *gin.Context) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	topics := make([]gin.H, 0, len(trendTopics))
	for _, topic := range trendTopics {
		topics = append(topics, gin.H{
			"topic":      topic,
			"mentions":   rng.Intn(20000) + 5000,
			"growth":     fmt.Sprintf("+%d%%", rng.Intn(30)+5),
			"sentiment":  pick(rng, "positive", "positive", "neutral", "negative"),
			"regions":    trendRegions[:rng.Intn(3)+2],
			"industries": trendIndustries[:rng.Intn(4)+2],
		})
	}

	performance := make([]gin.H, 0, len(contentFormats))
	for _, format := range contentFormats {
		performance = append(performance, gin.H{
			"format":      format,
			"performance": rng.Intn(40) + 60,
			"trend":       pick(rng, "up", "up", "down"),
			"engagement":  rng.Intn(30) + 40,
			"reach":       rng.Intn(50) + 30,
		})
	}

	demographics := []gin.H{
		{"ageGroup": "18-24", "percentage": rng.Intn(15) + 20, "trend": "up"},
		{"ageGroup": "25-34", "percentage": rng.Intn(15) + 30, "trend": "up"},
		{"ageGroup": "35-44", "percentage": rng.Intn(10) + 20, "trend": "stable"},
		{"ageGroup": "45-54", "percentage": rng.Intn(10) + 15, "trend": "down"},
		{"ageGroup": "55+", "percentage": rng.Intn(8) + 10, "trend": "up"},
	}

	engagement := make([]gin.H, 0, 12)
	for i := 0; i < 12; i++ {
		engagement = append(engagement, gin.H{
			"month":      time.Month(i + 1).String()[:3],
			"engagement": rng.Intn(30) + 60,
			"conversion": rng.Intn(15) + 10,
			"reach":      rng.Intn(30000) + 40000,
			"clicks":     rng.Intn(5000) + 2000,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"trendingTopics":     topics,
		"contentPerformance": performance,
		"demographics":       demographics,
		"engagementMetrics":  engagement,
		"updatedAt":          time.Now().UTC(),
	})
}

func pick(rng *rand.Rand, options ...string) string {
	return options[rng.Intn(len(options))]
}
