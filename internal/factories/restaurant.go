package factories

import (
	"fmt"
	"sync"
	"time"

	"github.com/lucsky/cuid"
	"github.com/pawonsalam/restosuite/internal/models"
)

const brand = "Pawon Salam"

type RestaurantFactory struct {
	nameCache sync.Map // branch names already handed out
}

func (rf *RestaurantFactory) CreateRestaurant(now time.Time) *models.Restaurant {
	return &models.Restaurant{
		ID:        cuid.New(),
		Name:      rf.createUniqueName(fake.Address().City()),
		CreatedAt: now.UTC(),
	}
}

func (rf *RestaurantFactory) createUniqueName(city string) string {
	base := fmt.Sprintf("%s %s", brand, city)
	name := base
	counter := 2

	for {
		if _, exists := rf.nameCache.LoadOrStore(name, true); !exists {
			return name
		}
		name = fmt.Sprintf("%s %d", base, counter)
		counter++
	}
}
