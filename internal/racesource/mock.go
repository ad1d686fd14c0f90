package racesource

import (
	"context"
	"time"

	"getabib/internal/domain"
)

const unsplash = "https://images.unsplash.com/"

// MockRaces es el catalogo fijo que se sirve cuando no hay fuentes disponibles.
func MockRaces() []domain.Race {
	return []domain.Race{
		{
			ID:              "1",
			Name:            "Boston Marathon",
			Date:            "2026-04-20",
			City:            "Boston",
			State:           "MA",
			Country:         "US",
			Distance:        marathonKm,
			DistanceLabel:   "Marathon",
			Category:        domain.CategoryMarathon,
			RegistrationURL: "https://www.baa.org/races/boston-marathon",
			Description:     "The world's oldest annual marathon and one of the most prestigious road races.",
			Price:           250,
			Currency:        "USD",
			SpotsRemaining:  1500,
			TotalSpots:      30000,
			ImageURL:        unsplash + "photo-1513593771513-7b58b6c4af38",
			Terrain:         domain.TerrainRoad,
			Elevation:       140,
			IsFeatured:      true,
			OrganizerName:   "Boston Athletic Association",
		},
		{
			ID:              "2",
			Name:            "Big Sur International Marathon",
			Date:            "2026-04-26",
			City:            "Big Sur",
			State:           "CA",
			Country:         "US",
			Distance:        marathonKm,
			DistanceLabel:   "Marathon",
			Category:        domain.CategoryMarathon,
			RegistrationURL: "https://www.bigsurmarathon.org",
			Description:     "One of the most scenic marathons in the world along Highway 1.",
			Price:           200,
			Currency:        "USD",
			ImageURL:        unsplash + "photo-1551632811-561732d1e306",
			Terrain:         domain.TerrainRoad,
			Elevation:       580,
			IsFeatured:      true,
			OrganizerName:   "Big Sur Marathon Foundation",
		},
		{
			ID:              "3",
			Name:            "Western States 100",
			Date:            "2026-06-27",
			City:            "Olympic Valley",
			State:           "CA",
			Country:         "US",
			Distance:        161,
			DistanceLabel:   "100 Mile Ultra",
			Category:        domain.CategoryUltra,
			RegistrationURL: "https://www.wser.org",
			Description:     "The world's oldest 100-mile trail race through the Sierra Nevada.",
			Price:           425,
			Currency:        "USD",
			ImageURL:        unsplash + "photo-1682686580391-615b1f28e5ee",
			Terrain:         domain.TerrainTrail,
			Elevation:       5500,
			IsFeatured:      true,
			OrganizerName:   "Western States Endurance Run",
		},
		{
			ID:              "4",
			Name:            "Brooklyn Half Marathon",
			Date:            "2026-05-16",
			City:            "Brooklyn",
			State:           "NY",
			Country:         "US",
			Distance:        21.1,
			DistanceLabel:   "Half Marathon",
			Category:        domain.CategoryHalf,
			RegistrationURL: "https://www.nyrr.org/races/brooklyn-half",
			Description:     "Run through the heart of Brooklyn finishing at the Coney Island Boardwalk.",
			Price:           125,
			Currency:        "USD",
			ImageURL:        unsplash + "photo-1571008887538-b36bb32f4571",
			Terrain:         domain.TerrainRoad,
			Elevation:       50,
			OrganizerName:   "New York Road Runners",
		},
		{
			ID:              "5",
			Name:            "Peachtree Road Race",
			Date:            "2026-07-04",
			City:            "Atlanta",
			State:           "GA",
			Country:         "US",
			Distance:        10,
			DistanceLabel:   "10K",
			Category:        domain.Category10K,
			RegistrationURL: "https://www.atlantatrackclub.org/peachtree",
			Description:     "America's largest 10K, held every Fourth of July.",
			Price:           50,
			Currency:        "USD",
			SpotsRemaining:  10000,
			TotalSpots:      60000,
			ImageURL:        unsplash + "photo-1571008887538-b36bb32f4571",
			Terrain:         domain.TerrainRoad,
			Elevation:       100,
			OrganizerName:   "Atlanta Track Club",
		},
		{
			ID:              "6",
			Name:            "Couch to 5K Graduation Run",
			Date:            "2026-03-15",
			City:            "San Francisco",
			State:           "CA",
			Country:         "US",
			Distance:        5,
			DistanceLabel:   "5K",
			Category:        domain.Category5K,
			RegistrationURL: "https://example.com/c25k",
			Description:     "Perfect for beginners celebrating their running journey!",
			Price:           35,
			Currency:        "USD",
			Terrain:         domain.TerrainRoad,
			Elevation:       30,
			OrganizerName:   "SF Running Club",
		},
		{
			ID:              "7",
			Name:            "Chicago Marathon",
			Date:            "2026-10-11",
			City:            "Chicago",
			State:           "IL",
			Country:         "US",
			Distance:        marathonKm,
			DistanceLabel:   "Marathon",
			Category:        domain.CategoryMarathon,
			RegistrationURL: "https://www.chicagomarathon.com",
			Description:     "A World Marathon Major with a flat, fast course through downtown Chicago.",
			Price:           230,
			Currency:        "USD",
			TotalSpots:      45000,
			ImageURL:        unsplash + "photo-1530549387789-4c1017266635",
			Terrain:         domain.TerrainRoad,
			Elevation:       25,
			IsFeatured:      true,
			OrganizerName:   "Bank of America",
		},
		{
			ID:              "8",
			Name:            "NYC Marathon",
			Date:            "2026-11-01",
			City:            "New York",
			State:           "NY",
			Country:         "US",
			Distance:        marathonKm,
			DistanceLabel:   "Marathon",
			Category:        domain.CategoryMarathon,
			RegistrationURL: "https://www.nyrr.org/tcsnycmarathon",
			Description:     "The world's largest marathon through all five NYC boroughs.",
			Price:           295,
			Currency:        "USD",
			TotalSpots:      53000,
			ImageURL:        unsplash + "photo-1530549387789-4c1017266635",
			Terrain:         domain.TerrainRoad,
			Elevation:       80,
			IsFeatured:      true,
			OrganizerName:   "New York Road Runners",
		},
		{
			ID:              "9",
			Name:            "UTMB Mont-Blanc",
			Date:            "2026-08-28",
			City:            "Chamonix",
			State:           "",
			Country:         "FR",
			Distance:        171,
			DistanceLabel:   "171K Ultra",
			Category:        domain.CategoryUltra,
			RegistrationURL: "https://utmbmontblanc.com",
			Description:     "The ultimate trail running challenge around Mont Blanc.",
			Price:           350,
			Currency:        "EUR",
			ImageURL:        unsplash + "photo-1464822759023-fed622ff2c3b",
			Terrain:         domain.TerrainTrail,
			Elevation:       10000,
			IsFeatured:      true,
			OrganizerName:   "UTMB Group",
		},
		{
			ID:              "10",
			Name:            "Shamrock Shuffle",
			Date:            "2026-03-29",
			City:            "Chicago",
			State:           "IL",
			Country:         "US",
			Distance:        8,
			DistanceLabel:   "8K",
			Category:        domain.Category10K,
			RegistrationURL: "https://www.shamrockshuffle.com",
			Description:     "Kick off spring running season with this fun 8K through downtown Chicago.",
			Price:           55,
			Currency:        "USD",
			ImageURL:        unsplash + "photo-1530549387789-4c1017266635",
			Terrain:         domain.TerrainRoad,
			Elevation:       15,
			OrganizerName:   "Bank of America",
		},
	}
}

// StaticSource sirve una lista fija; la usan el CLI y los tests.
type StaticSource struct {
	races     []domain.Race
	fetchedAt time.Time
}

func NewStaticSource(races []domain.Race) *StaticSource {
	if races == nil {
		races = MockRaces()
	}
	sorted := make([]domain.Race, len(races))
	copy(sorted, races)
	sortByDate(sorted)
	return &StaticSource{races: sorted, fetchedAt: time.Now().UTC()}
}

func (s *StaticSource) Races(ctx context.Context) ([]domain.Race, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Race, len(s.races))
	copy(out, s.races)
	return out, nil
}

func (s *StaticSource) Refresh(ctx context.Context) ([]domain.Race, error) {
	return s.Races(ctx)
}

func (s *StaticSource) Stats(_ context.Context) (domain.RaceStats, error) {
	return computeStats(s.races, &s.fetchedAt, time.Now().UTC()), nil
}
