package database

import (
	"fmt"
	"streamflix-api/internal/models"
	"streamflix-api/pkg/logging"

	"gorm.io/gorm"
)

var demoMovies = []models.Movie{
	{Title: "The Long Night", Description: "A lighthouse keeper waits out the longest storm of the century.", DurationMinutes: 118, Genre: "Drama", MinimumAge: 12},
	{Title: "Orbit Kids", Description: "Four friends build a rocket in their back yard.", DurationMinutes: 92, Genre: "Family", MinimumAge: 0},
	{Title: "Cold Ledger", Description: "An accountant uncovers a smuggling ring hidden in the books.", DurationMinutes: 131, Genre: "Thriller", MinimumAge: 16},
	{Title: "Canal Days", Description: "A summer of small adventures along the Amsterdam canals.", DurationMinutes: 45, Genre: "Documentary", MinimumAge: 0},
}

// InsertDefaultData inserts the demo catalog
func InsertDefaultData(db *gorm.DB) error {
	for _, movie := range demoMovies {
		m := movie
		// Use FirstOrCreate to avoid duplicates
		if err := db.Where("title = ?", m.Title).FirstOrCreate(&m).Error; err != nil {
			return fmt.Errorf("failed to create demo movie %q: %w", m.Title, err)
		}
	}

	logging.Infof("Default data inserted successfully")
	return nil
}
