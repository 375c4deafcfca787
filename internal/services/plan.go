package services

import (
	"streamflix-api/internal/models"
	"strings"
)

// Plan describes a subscription tier
type Plan struct {
	Quality     models.Quality `json:"quality"`
	Price       float64        `json:"price"`
	Description string         `json:"description"`
}

var plans = map[models.Quality]Plan{
	models.QualitySD:  {Quality: models.QualitySD, Price: 7.99, Description: "Basic SD - Standard Definition streaming"},
	models.QualityHD:  {Quality: models.QualityHD, Price: 12.99, Description: "Standard HD - High Definition streaming"},
	models.QualityUHD: {Quality: models.QualityUHD, Price: 17.99, Description: "Premium UHD - Ultra HD streaming"},
}

// PlanInfo looks up the price and description of a tier
func PlanInfo(quality models.Quality) (Plan, error) {
	plan, ok := plans[quality]
	if !ok {
		return Plan{}, invalid("quality must be one of SD, HD, UHD")
	}
	return plan, nil
}

// ParseQuality normalizes a client supplied tier
func ParseQuality(raw string) (models.Quality, error) {
	quality := models.Quality(strings.ToUpper(strings.TrimSpace(raw)))
	if _, err := PlanInfo(quality); err != nil {
		return "", err
	}
	return quality, nil
}

// Plans lists every tier, cheapest first
func Plans() []Plan {
	return []Plan{plans[models.QualitySD], plans[models.QualityHD], plans[models.QualityUHD]}
}
