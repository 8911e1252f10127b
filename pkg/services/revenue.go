package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

var digitsPattern = regexp.MustCompile(`\d+`)

// EstimateRevenue returns the displayed ARR estimate of an idea. The latest
// analysis wins when it carries a revenue figure; otherwise the estimate is
// derived from the revenue model and target market.
func EstimateRevenue(latest *models.Analysis, targetMarket, revenueModel *string) string {
	if estimate, ok := revenueFromAnalysis(latest); ok {
		return estimate
	}

	market := strings.ToLower(derefString(targetMarket))
	model := strings.ToLower(derefString(revenueModel))

	switch {
	case strings.Contains(model, "subscription") || strings.Contains(model, "saas"):
		if strings.Contains(market, "enterprise") || strings.Contains(market, "business") {
			return "$500K - $5M ARR"
		}
		return "$100K - $1M ARR"
	case strings.Contains(model, "marketplace") || strings.Contains(model, "commission"):
		return "$250K - $2M ARR"
	case strings.Contains(model, "advertising"):
		return "$50K - $500K ARR"
	default:
		return "$100K - $1M ARR"
	}
}

func revenueFromAnalysis(a *models.Analysis) (string, bool) {
	if a == nil {
		return "", false
	}

	revenueRange := a.RevenueRange
	if a.AnalysisData != nil && a.AnalysisData.BusinessFit != nil && a.AnalysisData.BusinessFit.RevenuePotential != nil {
		rp := a.AnalysisData.BusinessFit.RevenuePotential
		if rp.EstimatedARR != "" {
			return rp.EstimatedARR, true
		}
		if rp.Range != "" {
			revenueRange = rp.Range
		}
	}
	if revenueRange == "" {
		return "", false
	}

	lower := strings.ToLower(revenueRange)
	if strings.Contains(lower, "arr") {
		return revenueRange, true
	}
	if strings.Contains(lower, "mrr") {
		numbers := digitsPattern.FindAllString(lower, -1)
		if len(numbers) >= 2 {
			low, errLow := strconv.Atoi(numbers[0])
			high, errHigh := strconv.Atoi(numbers[1])
			if errLow == nil && errHigh == nil {
				return fmt.Sprintf("$%dK - $%dK ARR", low*12, high*12), true
			}
		}
	}
	return revenueRange, true
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
