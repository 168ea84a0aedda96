package datagen

import (
	"fmt"
	"strings"
	"time"

	"flakelab/internal/sqlgen"
	"flakelab/pkg/models"
)

// RetailVolumes sizes the lab fixtures. MaxTransactions caps the total when
// positive.
type RetailVolumes struct {
	Customers          int
	Products           int
	Stores             int
	TransactionsPerDay int
	HistoricalDays     int
	MaxTransactions    int
}

// TransactionCount is the number of transactions Retail will generate
func (v RetailVolumes) TransactionCount() int {
	n := v.TransactionsPerDay * v.HistoricalDays
	if v.MaxTransactions > 0 && n > v.MaxTransactions {
		n = v.MaxTransactions
	}
	return n
}

var (
	firstNames = []string{"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica", "Thomas", "Sarah", "Carlos", "Aisha", "Wei", "Priya"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Chen", "Patel", "Nguyen"}
	streets    = []string{"Main St", "Oak Ave", "Pine Rd", "Maple Dr", "Cedar Ln", "Elm St", "Lake Blvd", "Park Ave"}
	segments   = []string{"Consumer", "Small Business", "Enterprise"}
	tiers      = []string{"Bronze", "Silver", "Gold", "Platinum"}
	channels   = []string{"Online", "In-Store", "Mobile App"}
	payments   = []string{"Credit Card", "Debit Card", "Cash", "Mobile Wallet"}
	discounts  = []float64{0, 0, 0, 5, 10, 15, 20}

	storeCities = []struct{ city, state, region string }{
		{"New York", "NY", "Northeast"},
		{"Boston", "MA", "Northeast"},
		{"Philadelphia", "PA", "Northeast"},
		{"Chicago", "IL", "Midwest"},
		{"Minneapolis", "MN", "Midwest"},
		{"Columbus", "OH", "Midwest"},
		{"Atlanta", "GA", "Southeast"},
		{"Miami", "FL", "Southeast"},
		{"Charlotte", "NC", "Southeast"},
		{"Dallas", "TX", "Southwest"},
		{"Phoenix", "AZ", "Southwest"},
		{"Denver", "CO", "West"},
		{"Seattle", "WA", "West"},
		{"San Francisco", "CA", "West"},
		{"Los Angeles", "CA", "West"},
	}

	productCatalog = []struct {
		category      string
		subcategories []string
		brands        []string
		priceLo       float64
		priceHi       float64
	}{
		{"Electronics", []string{"Laptops", "Phones", "Audio", "Accessories"}, []string{"Voltix", "Nimbus", "Arcwave"}, 25, 1500},
		{"Home", []string{"Kitchen", "Furniture", "Decor"}, []string{"Hearthline", "Oakmere", "Casa Nova"}, 10, 800},
		{"Apparel", []string{"Mens", "Womens", "Kids", "Footwear"}, []string{"Northloom", "Stride", "Urbanite"}, 8, 250},
		{"Sports", []string{"Fitness", "Outdoor", "Team Sports"}, []string{"Peakform", "Trailhead", "Summit"}, 12, 600},
		{"Grocery", []string{"Snacks", "Beverages", "Pantry"}, []string{"Greenfield", "Daily Harvest"}, 2, 40},
	}
)

// Retail builds the lab data set ending at the reference date
func (g *Generator) Retail(v RetailVolumes) models.RetailFixtures {
	start := g.now.AddDate(0, 0, -v.HistoricalDays)
	fx := models.RetailFixtures{
		Customers: g.customers(v.Customers, start),
		Products:  g.products(v.Products),
		Stores:    g.stores(v.Stores, start),
	}
	fx.Transactions = g.transactions(v.TransactionCount(), v.HistoricalDays, fx)
	return fx
}

func (g *Generator) customers(n int, start time.Time) []models.Customer {
	span := int(g.now.Sub(start).Hours() / 24)
	rows := make([]models.Customer, n)
	for i := range rows {
		first, last := g.pick(firstNames), g.pick(lastNames)
		created := start.AddDate(0, 0, g.intn(0, span))
		remaining := int(g.now.Sub(created).Hours() / 24)
		loc := storeCities[g.rng.Intn(len(storeCities))]

		rows[i] = models.Customer{
			CustomerID:         fmt.Sprintf("CUST%06d", i+1),
			FirstName:          first,
			LastName:           last,
			Email:              fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
			Phone:              fmt.Sprintf("555-%03d-%04d", g.intn(100, 999), g.intn(0, 9999)),
			Address:            fmt.Sprintf("%d %s", g.intn(1, 9999), g.pick(streets)),
			City:               loc.city,
			State:              loc.state,
			ZipCode:            fmt.Sprintf("%05d", g.intn(1000, 99999)),
			Country:            "USA",
			Segment:            g.pick(segments),
			LoyaltyTier:        g.pick(tiers),
			AccountCreatedDate: formatDate(created),
			LifetimeValue:      sqlgen.Round(g.uniform(0, 25000), 2),
			IsActive:           g.rng.Float64() < 0.9,
			LastPurchaseDate:   formatDate(created.AddDate(0, 0, g.intn(0, remaining))),
		}
	}
	return rows
}

func (g *Generator) products(n int) []models.Product {
	rows := make([]models.Product, n)
	for i := range rows {
		cat := productCatalog[g.rng.Intn(len(productCatalog))]
		sub := g.pick(cat.subcategories)
		brand := g.pick(cat.brands)
		price := sqlgen.Round(g.uniform(cat.priceLo, cat.priceHi), 2)
		cost := sqlgen.Round(price*g.uniform(0.4, 0.85), 2)
		stock := g.intn(0, 500)

		rows[i] = models.Product{
			ProductID:     fmt.Sprintf("PROD%05d", i+1),
			ProductName:   fmt.Sprintf("%s %s %d", brand, sub, i+1),
			Category:      cat.category,
			Subcategory:   sub,
			Brand:         brand,
			UnitPrice:     price,
			Cost:          cost,
			MarginPct:     sqlgen.Round((price-cost)/price*100, 2),
			InStock:       stock > 0,
			StockQuantity: stock,
			SupplierID:    fmt.Sprintf("SUP%03d", g.intn(1, 40)),
			IsActive:      true,
		}
	}
	return rows
}

func (g *Generator) stores(n int, start time.Time) []models.Store {
	rows := make([]models.Store, n)
	for i := range rows {
		loc := storeCities[i%len(storeCities)]
		rows[i] = models.Store{
			StoreID:   fmt.Sprintf("STORE%03d", i+1),
			StoreName: fmt.Sprintf("%s #%d", loc.city, i/len(storeCities)+1),
			Region:    loc.region,
			City:      loc.city,
			State:     loc.state,
			OpenDate:  formatDate(start.AddDate(-g.intn(1, 15), 0, 0)),
		}
	}
	return rows
}

func (g *Generator) transactions(n, days int, fx models.RetailFixtures) []models.Transaction {
	if len(fx.Customers) == 0 || len(fx.Products) == 0 || len(fx.Stores) == 0 {
		return nil
	}
	rows := make([]models.Transaction, n)
	for i := range rows {
		day := g.now.AddDate(0, 0, -g.intn(0, days))
		ts := time.Date(day.Year(), day.Month(), day.Day(), g.intn(7, 22), g.intn(0, 59), g.intn(0, 59), 0, time.UTC)
		product := fx.Products[g.rng.Intn(len(fx.Products))]
		qty := g.intn(1, 5)
		discount := discounts[g.rng.Intn(len(discounts))]

		rows[i] = models.Transaction{
			TransactionID:        fmt.Sprintf("TXN%08d", i+1),
			TransactionDate:      formatDate(ts),
			TransactionTimestamp: FormatTimestamp(ts),
			CustomerID:           fx.Customers[g.rng.Intn(len(fx.Customers))].CustomerID,
			StoreID:              fx.Stores[g.rng.Intn(len(fx.Stores))].StoreID,
			ProductID:            product.ProductID,
			Quantity:             qty,
			UnitPrice:            product.UnitPrice,
			DiscountPct:          discount,
			TotalAmount:          sqlgen.Round(product.UnitPrice*float64(qty)*(1-discount/100), 2),
			PaymentMethod:        g.pick(payments),
			Channel:              g.pick(channels),
		}
	}
	return rows
}
