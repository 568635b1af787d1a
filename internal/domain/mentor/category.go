package mentor

import (
	"strings"

	"github.com/mentorbase/mentor-marketplace/internal/models"
)

type categoryRule struct {
	keywords []string
	category string
}

// categoryRules map an applicant's free-text topic to a category. Evaluated
// in order; first rule with a keyword hit wins.
var categoryRules = []categoryRule{
	{[]string{"software", "coding", "programming", "engineer", "developer", "backend", "frontend", "data"}, models.CategoryEngineering},
	{[]string{"design", "ux", "ui", "figma", "illustration", "branding"}, models.CategoryDesign},
	{[]string{"marketing", "seo", "growth", "content", "social media", "ads"}, models.CategoryMarketing},
	{[]string{"finance", "invest", "accounting", "budget", "tax"}, models.CategoryFinance},
	{[]string{"fitness", "health", "yoga", "nutrition", "wellness", "mindfulness"}, models.CategoryWellness},
	{[]string{"career", "resume", "interview", "job search", "leadership"}, models.CategoryCareer},
}

// DefaultCategory is the documented fallback when no rule matches.
const DefaultCategory = models.CategoryOther

func InferCategory(topic string) string {
	normalized := strings.ToLower(topic)

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return rule.category
			}
		}
	}
	return DefaultCategory
}
