package cmd

import (
	"time"

	"github.com/pawonsalam/restosuite/internal/auth"
	"github.com/pawonsalam/restosuite/internal/factories"
	"github.com/pawonsalam/restosuite/internal/logger"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const seedBatchSize = 500

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate demo restaurants and employees",
	RunE: func(cmd *cobra.Command, args []string) error {
		employees, _ := cmd.Flags().GetInt("employees")
		restaurantCount, _ := cmd.Flags().GetInt("restaurants")
		password, _ := cmd.Flags().GetString("password")
		if employees < 0 || restaurantCount < 1 {
			return errors.New("--employees must be >= 0 and --restaurants >= 1")
		}

		ctx := cmd.Context()
		store, err := openUserStore(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer store.close()

		now := time.Now()
		rf := &factories.RestaurantFactory{}
		restaurants := make([]*models.Restaurant, 0, restaurantCount)
		for i := 0; i < restaurantCount; i++ {
			r := rf.CreateRestaurant(now)
			if err := store.restaurants.Create(ctx, r); err != nil {
				return errors.Wrap(err, "creating restaurant")
			}
			restaurants = append(restaurants, r)
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		ef := &factories.EmployeeFactory{PasswordHash: hash}

		bar := progressbar.Default(int64(employees), "seeding employees")
		for done := 0; done < employees; {
			n := seedBatchSize
			if remaining := employees - done; remaining < n {
				n = remaining
			}
			batch := make([]*models.User, n)
			for i := range batch {
				batch[i] = ef.CreateEmployee(restaurants, now)
			}
			if err := store.users.BulkCreate(ctx, batch); err != nil {
				return errors.Wrapf(err, "inserting employees %d-%d", done, done+n)
			}
			done += n
			bar.Add(n)
		}

		logger.GetLogger().Infow("seeded demo data", "restaurants", restaurantCount, "employees", employees)
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("employees", 100, "Number of employees to generate")
	seedCmd.Flags().Int("restaurants", 3, "Number of restaurant branches to generate")
	seedCmd.Flags().String("password", "pawonsalam", "Password shared by generated accounts")
	rootCmd.AddCommand(seedCmd)
}
