package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
	"github.com/xenking/storefront/internal/storage/postgres"
)

type productJSON struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Qty         int             `json:"qty"`
	Price       decimal.Decimal `json:"price"`
	PriceOff    decimal.Decimal `json:"price_off"`
	Img         string          `json:"img"`
}

type adminAccount struct {
	email    string
	password string
}

func main() {
	var (
		databaseURL  string
		productsFile string
		admin        adminAccount
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&admin.email, "admin-email", "", "email of the admin account to create or promote (or STORE_ADMIN_EMAIL env)")
	flag.StringVar(&admin.password, "admin-password", "", "password for a newly created admin (or STORE_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if admin.email == "" {
		admin.email = os.Getenv("STORE_ADMIN_EMAIL")
	}
	if admin.password == "" {
		admin.password = os.Getenv("STORE_ADMIN_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, admin); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string, admin adminAccount) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, postgres.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if admin.email == "" {
		slog.Info("no admin email given, skipping admin account")
		return nil
	}
	if err := seedAdmin(ctx, postgres.NewUserRepository(pool), admin); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	return nil
}

// seedProducts inserts every product whose name is not in the catalog yet.
func seedProducts(ctx context.Context, products *postgres.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var items []productJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("seeding products", slog.Int("count", len(items)))

	for _, it := range items {
		exists, err := products.ExistsByName(ctx, it.Name)
		if err != nil {
			return err
		}
		if exists {
			slog.Info("product exists, skipping", slog.String("name", it.Name))
			continue
		}

		p := product.Product{
			Name:        it.Name,
			Description: it.Description,
			Qty:         it.Qty,
			Price:       it.Price,
			PriceOff:    it.PriceOff,
			Img:         it.Img,
		}
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "product %q", it.Name)
		}
		if err := products.Create(ctx, &p); err != nil {
			return errors.Wrapf(err, "create product %q", it.Name)
		}

		slog.Info("created product", slog.Int64("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

// seedAdmin promotes an existing account or creates a new admin.
func seedAdmin(ctx context.Context, users *postgres.UserRepository, admin adminAccount) error {
	email := user.NormalizeEmail(admin.email)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		slog.Info("promoting existing account", slog.String("email", email))
	case errors.Is(err, user.ErrNotFound):
		if admin.password == "" {
			return errors.New("admin password is required to create a new account: set --admin-password or STORE_ADMIN_PASSWORD")
		}
		hash, err := user.HashPassword(admin.password, 0)
		if err != nil {
			return err
		}
		u = &user.User{
			Name:         "Admin",
			LastName:     "Storefront",
			Email:        email,
			PasswordHash: hash,
		}
		if err := users.Create(ctx, u); err != nil {
			return errors.Wrap(err, "create admin")
		}
		slog.Info("created admin account", slog.Int64("id", u.ID), slog.String("email", email))
	default:
		return errors.Wrap(err, "lookup admin")
	}

	if err := users.SetAdmin(ctx, u.ID, true); err != nil {
		return errors.Wrap(err, "set admin flag")
	}
	return nil
}
