// Package lab sets up the data-engineering demo environment: a layered
// retail warehouse with pipelines, a dynamic table and a data share.
package lab

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"flakelab/internal/datagen"
	"flakelab/pkg/errors"
	"flakelab/pkg/models"
)

// Version is reported in the setup banner
const Version = "1.0.0"

// DefaultConnection is the connection profile the lab expects
const DefaultConnection = "demo_connection"

const (
	Database = "DATA_ENG_DEMO"

	SchemaRaw       = "RAW_DATA"
	SchemaStaging   = "STAGING"
	SchemaCurated   = "CURATED"
	SchemaAnalytics = "ANALYTICS"
	SchemaShared    = "SHARED_DATA"

	WarehouseLoad      = "DATA_ENG_LOAD_WH"
	WarehouseTransform = "DATA_ENG_XFORM_WH"
	WarehouseAnalytics = "DATA_ENG_ANALYTICS_WH"

	ShareName        = "DATA_ENG_CUSTOMER_SHARE"
	ShareDescription = "Curated sales and customer analytics for partners"

	StageCSV      = "CSV_STAGE"
	StageJSON     = "JSON_STAGE"
	StageParquet  = "PARQUET_STAGE"
	FormatCSV     = "CSV_FORMAT"
	FormatJSON    = "JSON_FORMAT"
	FormatParquet = "PARQUET_FORMAT"

	PipeTransactions   = "TRANSACTIONS_PIPE"
	PipeCustomerEvents = "CUSTOMER_EVENTS_PIPE"

	TagLoad      = "DATA_ENG_DEMO_LOAD"
	TagTransform = "DATA_ENG_DEMO_TRANSFORM"
)

// Volume ceilings accepted by Validate
const (
	MaxCustomers      = 10000
	MaxProducts       = 1000
	MaxStores         = 100
	MaxHistoricalDays = 730
)

// schema is a schema name and its comment
type schema struct {
	name    string
	comment string
}

var schemas = []schema{
	{SchemaRaw, "Landing zone for raw data ingestion"},
	{SchemaStaging, "Staging area for data validation"},
	{SchemaCurated, "Curated clean data with business logic"},
	{SchemaAnalytics, "Business-ready analytics tables"},
	{SchemaShared, "Curated data for external sharing"},
}

// Warehouses returns the lab warehouses in creation order
func Warehouses() []string {
	return []string{WarehouseLoad, WarehouseTransform, WarehouseAnalytics}
}

// ClusteringKeys maps a table to its clustering columns
var ClusteringKeys = map[string][]string{
	"TRANSACTIONS":    {"TRANSACTION_DATE", "STORE_ID"},
	"CUSTOMER_EVENTS": {"EVENT_DATE", "CUSTOMER_ID"},
	"PRODUCTS":        {"CATEGORY", "BRAND"},
}

// Config sizes the lab
type Config struct {
	Customers          int
	Products           int
	Stores             int
	TransactionsPerDay int
	HistoricalDays     int
	// MaxTransactions caps the generated transactions when positive
	MaxTransactions int

	DynamicTableLag  string
	QualityThreshold float64

	// ShareAccounts are consumer accounts added to the share, best effort
	ShareAccounts []string
	// DataDir receives the Parquet files staged by the fixture load. Empty
	// uses a temporary directory removed after the load.
	DataDir string
	// Now is the reference date for generated rows. Zero uses the clock.
	Now time.Time
}

// DefaultConfig returns the full-size lab
func DefaultConfig() Config {
	return Config{
		Customers:          1000,
		Products:           200,
		Stores:             50,
		TransactionsPerDay: 500,
		HistoricalDays:     365,
		DynamicTableLag:    "1 MINUTE",
		QualityThreshold:   0.95,
	}
}

// QuickMaxTransactions caps the transaction fixture in quick mode
const QuickMaxTransactions = 10000

// Quick shrinks the volumes for a fast setup
func (c Config) Quick() Config {
	c.Customers = 100
	c.Products = 50
	c.TransactionsPerDay = 50
	if c.MaxTransactions == 0 || c.MaxTransactions > QuickMaxTransactions {
		c.MaxTransactions = QuickMaxTransactions
	}
	return c
}

// WithVolumes applies the non-zero overrides from the app config
func (c Config) WithVolumes(v models.LabVolumes) Config {
	if v.Customers > 0 {
		c.Customers = v.Customers
	}
	if v.Products > 0 {
		c.Products = v.Products
	}
	if v.Stores > 0 {
		c.Stores = v.Stores
	}
	if v.TransactionsPerDay > 0 {
		c.TransactionsPerDay = v.TransactionsPerDay
	}
	if v.HistoricalDays > 0 {
		c.HistoricalDays = v.HistoricalDays
	}
	if v.MaxTransactions > 0 {
		c.MaxTransactions = v.MaxTransactions
	}
	return c
}

// Validate checks the volumes against their ceilings
func (c Config) Validate() error {
	limits := []struct {
		field string
		value int
		max   int
	}{
		{"customers", c.Customers, MaxCustomers},
		{"products", c.Products, MaxProducts},
		{"stores", c.Stores, MaxStores},
		{"historical_days", c.HistoricalDays, MaxHistoricalDays},
	}
	for _, l := range limits {
		if l.value < 1 || l.value > l.max {
			return errors.ValidationError(l.field, l.value, fmt.Sprintf("must be between 1 and %d", l.max))
		}
	}
	if c.TransactionsPerDay < 1 {
		return errors.ValidationError("transactions_per_day", c.TransactionsPerDay, "must be positive")
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 1 {
		return errors.ValidationError("quality_threshold", c.QualityThreshold, "must be between 0 and 1")
	}
	return nil
}

// StartDate is the first day of generated history
func (c Config) StartDate() string {
	start, _ := datagen.DateRangeBack(c.now(), c.HistoricalDays)
	return start
}

// EndDate is the reference date
func (c Config) EndDate() string {
	_, end := datagen.DateRangeBack(c.now(), c.HistoricalDays)
	return end
}

// Volumes converts the config for the retail generator
func (c Config) Volumes() datagen.RetailVolumes {
	return datagen.RetailVolumes{
		Customers:          c.Customers,
		Products:           c.Products,
		Stores:             c.Stores,
		TransactionsPerDay: c.TransactionsPerDay,
		HistoricalDays:     c.HistoricalDays,
		MaxTransactions:    c.MaxTransactions,
	}
}

func (c Config) now() time.Time {
	if c.Now.IsZero() {
		return time.Now().UTC()
	}
	return c.Now
}

// Mode selects what the lab command does
type Mode string

const (
	ModeFull     Mode = "full"
	ModeQuick    Mode = "quick"
	ModeCleanup  Mode = "cleanup"
	ModeValidate Mode = "validate"
)

// Modes lists the accepted modes
var Modes = []Mode{ModeFull, ModeQuick, ModeCleanup, ModeValidate}

var _ pflag.Value = (*Mode)(nil)

func (m *Mode) String() string {
	if *m == "" {
		return string(ModeFull)
	}
	return string(*m)
}

func (m *Mode) Set(s string) error {
	for _, known := range Modes {
		if strings.EqualFold(s, string(known)) {
			*m = known
			return nil
		}
	}
	names := make([]string, len(Modes))
	for i, known := range Modes {
		names[i] = string(known)
	}
	return fmt.Errorf("must be one of %s", strings.Join(names, "|"))
}

func (m *Mode) Type() string {
	return "mode"
}

// Setup reports whether the mode builds the environment
func (m Mode) Setup() bool {
	return m == "" || m == ModeFull || m == ModeQuick
}
