// Command seed loads the known rinks so every ingestion job can run,
// including the ones that refuse to invent their own rink row.
package main

import (
	"context"
	"log"
	"time"

	"github.com/icetimehq/icetime-api/internal/models"
	"github.com/icetimehq/icetime-api/internal/repository"
	"github.com/icetimehq/icetime-api/pkg/config"
	"github.com/icetimehq/icetime-api/pkg/database"
)

func ptr[T any](v T) *T { return &v }

var rinks = []models.Rink{
	{
		Name:      "Mennen Sports Arena",
		Location:  "161 East Hanover Avenue, Morristown, NJ 07960",
		Website:   ptr("https://www.morrisparks.net/index.php/parks/mennen-sports-arena/"),
		Latitude:  ptr(40.8291),
		Longitude: ptr(-74.4544),
	},
	{
		Name:      "Union Sports Arena",
		Location:  "2441 US-22, Union, NJ 07083",
		Website:   ptr("https://unionsportsarena.com"),
		Latitude:  ptr(40.6967),
		Longitude: ptr(-74.2903),
	},
	{
		Name:      "Codey Arena",
		Location:  "560 Northfield Ave, West Orange, NJ 07052",
		Website:   ptr("https://essexcountyparks.org/facilities/codey-arena"),
		Latitude:  ptr(40.7684),
		Longitude: ptr(-74.2809),
	},
	{
		Name:      "Bridgewater Ice Arena",
		Location:  "1425 Frontier Rd, Bridgewater, NJ 08807",
		Website:   ptr("https://www.bridgewatericearena.com"),
		Latitude:  ptr(40.5584),
		Longitude: ptr(-74.6213),
	},
	{
		Name:      "Bloomington Ice Garden",
		Location:  "3600 West 98th Street, Bloomington, MN 55431",
		Website:   ptr("https://www.bloomingtonmn.gov/bloomington-ice-garden"),
		Latitude:  ptr(44.8269),
		Longitude: ptr(-93.3047),
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	repo := repository.NewRinkRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for i := range rinks {
		stored, err := repo.Upsert(ctx, &rinks[i])
		if err != nil {
			log.Fatalf("failed to seed rink %s: %v", rinks[i].Name, err)
		}
		log.Printf("seeded rink %s (%s)", stored.Name, stored.ID)
	}
	log.Printf("seeding finished: %d rinks", len(rinks))
}
