package models

// Retail rows for the data-engineering lab. Column names match the RAW_DATA
// tables so COPY INTO ... MATCH_BY_COLUMN_NAME can load the Parquet files.

type Customer struct {
	CustomerID         string  `parquet:"customer_id" json:"customer_id"`
	FirstName          string  `parquet:"first_name" json:"first_name"`
	LastName           string  `parquet:"last_name" json:"last_name"`
	Email              string  `parquet:"email" json:"email"`
	Phone              string  `parquet:"phone" json:"phone"`
	Address            string  `parquet:"address" json:"address"`
	City               string  `parquet:"city" json:"city"`
	State              string  `parquet:"state" json:"state"`
	ZipCode            string  `parquet:"zip_code" json:"zip_code"`
	Country            string  `parquet:"country" json:"country"`
	Segment            string  `parquet:"customer_segment" json:"customer_segment"`
	LoyaltyTier        string  `parquet:"loyalty_tier" json:"loyalty_tier"`
	AccountCreatedDate string  `parquet:"account_created_date" json:"account_created_date"`
	LifetimeValue      float64 `parquet:"lifetime_value" json:"lifetime_value"`
	IsActive           bool    `parquet:"is_active" json:"is_active"`
	LastPurchaseDate   string  `parquet:"last_purchase_date" json:"last_purchase_date"`
}

type Product struct {
	ProductID     string  `parquet:"product_id" json:"product_id"`
	ProductName   string  `parquet:"product_name" json:"product_name"`
	Category      string  `parquet:"category" json:"category"`
	Subcategory   string  `parquet:"subcategory" json:"subcategory"`
	Brand         string  `parquet:"brand" json:"brand"`
	UnitPrice     float64 `parquet:"unit_price" json:"unit_price"`
	Cost          float64 `parquet:"cost" json:"cost"`
	MarginPct     float64 `parquet:"margin_pct" json:"margin_pct"`
	InStock       bool    `parquet:"in_stock" json:"in_stock"`
	StockQuantity int     `parquet:"stock_quantity" json:"stock_quantity"`
	SupplierID    string  `parquet:"supplier_id" json:"supplier_id"`
	IsActive      bool    `parquet:"is_active" json:"is_active"`
}

type Store struct {
	StoreID   string `parquet:"store_id" json:"store_id"`
	StoreName string `parquet:"store_name" json:"store_name"`
	Region    string `parquet:"region" json:"region"`
	City      string `parquet:"city" json:"city"`
	State     string `parquet:"state" json:"state"`
	OpenDate  string `parquet:"open_date" json:"open_date"`
}

type Transaction struct {
	TransactionID        string  `parquet:"transaction_id" json:"transaction_id"`
	TransactionDate      string  `parquet:"transaction_date" json:"transaction_date"`
	TransactionTimestamp string  `parquet:"transaction_timestamp" json:"transaction_timestamp"`
	CustomerID           string  `parquet:"customer_id" json:"customer_id"`
	StoreID              string  `parquet:"store_id" json:"store_id"`
	ProductID            string  `parquet:"product_id" json:"product_id"`
	Quantity             int     `parquet:"quantity" json:"quantity"`
	UnitPrice            float64 `parquet:"unit_price" json:"unit_price"`
	DiscountPct          float64 `parquet:"discount_pct" json:"discount_pct"`
	TotalAmount          float64 `parquet:"total_amount" json:"total_amount"`
	PaymentMethod        string  `parquet:"payment_method" json:"payment_method"`
	Channel              string  `parquet:"channel" json:"channel"`
}

// RetailFixtures is the generated lab data set
type RetailFixtures struct {
	Customers    []Customer
	Products     []Product
	Stores       []Store
	Transactions []Transaction
}
