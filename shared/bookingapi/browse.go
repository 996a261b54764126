package bookingapi

import (
	"context"

	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"golang.org/x/sync/errgroup"
)

// Catalog is everything bookable, grouped by type
type Catalog struct {
	Flights []models.InventoryItem `json:"flights"`
	Hotels  []models.InventoryItem `json:"hotels"`
	Events  []models.InventoryItem `json:"events"`
}

// Browse fetches all three inventories concurrently. The first failure
// cancels the other requests.
func (c *Client) Browse(ctx context.Context, filters map[models.BookingType]Filters) (*Catalog, error) {
	g, ctx := errgroup.WithContext(ctx)
	catalog := &Catalog{}

	targets := []struct {
		t   models.BookingType
		dst *[]models.InventoryItem
	}{
		{models.BookingTypeFlight, &catalog.Flights},
		{models.BookingTypeHotel, &catalog.Hotels},
		{models.BookingTypeEvent, &catalog.Events},
	}
	for _, target := range targets {
		target := target
		g.Go(func() error {
			items, err := c.ListInventory(ctx, target.t, filters[target.t])
			if err != nil {
				return err
			}
			*target.dst = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return catalog, nil
}
