package lab

import (
	"fmt"

	"flakelab/internal/sqlgen"
)

func raw(table string) string     { return sqlgen.Qualify(Database, SchemaRaw, table) }
func curated(table string) string { return sqlgen.Qualify(Database, SchemaCurated, table) }

// rawTables are created before the fixture load. Column names match the
// Parquet files so COPY INTO can match by name.
var rawTables = []struct {
	name string
	ddl  string
}{
	{"CUSTOMERS", `(
    CUSTOMER_ID VARCHAR(20) PRIMARY KEY,
    FIRST_NAME VARCHAR(100),
    LAST_NAME VARCHAR(100),
    EMAIL VARCHAR(200),
    PHONE VARCHAR(30),
    ADDRESS VARCHAR(200),
    CITY VARCHAR(100),
    STATE VARCHAR(10),
    ZIP_CODE VARCHAR(10),
    COUNTRY VARCHAR(50),
    CUSTOMER_SEGMENT VARCHAR(50),
    LOYALTY_TIER VARCHAR(20),
    ACCOUNT_CREATED_DATE DATE,
    LIFETIME_VALUE DECIMAL(12,2),
    IS_ACTIVE BOOLEAN,
    LAST_PURCHASE_DATE DATE,
    LOADED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
)`},
	{"PRODUCTS", `(
    PRODUCT_ID VARCHAR(20) PRIMARY KEY,
    PRODUCT_NAME VARCHAR(200),
    CATEGORY VARCHAR(100),
    SUBCATEGORY VARCHAR(100),
    BRAND VARCHAR(100),
    UNIT_PRICE DECIMAL(10,2),
    COST DECIMAL(10,2),
    MARGIN_PCT DECIMAL(6,2),
    IN_STOCK BOOLEAN,
    STOCK_QUANTITY INTEGER,
    SUPPLIER_ID VARCHAR(20),
    IS_ACTIVE BOOLEAN,
    LOADED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
)`},
	{"STORES", `(
    STORE_ID VARCHAR(20) PRIMARY KEY,
    STORE_NAME VARCHAR(200),
    REGION VARCHAR(50),
    CITY VARCHAR(100),
    STATE VARCHAR(10),
    OPEN_DATE DATE,
    LOADED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
)`},
	{"TRANSACTIONS", `(
    TRANSACTION_ID VARCHAR(20) PRIMARY KEY,
    TRANSACTION_DATE DATE,
    TRANSACTION_TIMESTAMP TIMESTAMP_NTZ,
    CUSTOMER_ID VARCHAR(20),
    STORE_ID VARCHAR(20),
    PRODUCT_ID VARCHAR(20),
    QUANTITY INTEGER,
    UNIT_PRICE DECIMAL(10,2),
    DISCOUNT_PCT DECIMAL(5,2),
    TOTAL_AMOUNT DECIMAL(12,2),
    PAYMENT_METHOD VARCHAR(50),
    CHANNEL VARCHAR(50),
    LOADED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
)`},
	{"CUSTOMER_EVENTS", `(
    EVENT_ID VARCHAR(36),
    EVENT_DATE DATE,
    CUSTOMER_ID VARCHAR(20),
    EVENT_TYPE VARCHAR(50),
    PAYLOAD VARIANT,
    LOADED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
)`},
}

func createRawTable(name, ddl string) string {
	return fmt.Sprintf("CREATE OR REPLACE TABLE %s %s", raw(name), ddl)
}

var curatedCustomers = `SELECT
    CUSTOMER_ID,
    FIRST_NAME,
    LAST_NAME,
    UPPER(FIRST_NAME || ' ' || LAST_NAME) AS FULL_NAME,
    LOWER(EMAIL) AS EMAIL,
    PHONE,
    ADDRESS,
    CITY,
    STATE,
    ZIP_CODE,
    COUNTRY,
    CUSTOMER_SEGMENT,
    LOYALTY_TIER,
    ACCOUNT_CREATED_DATE,
    LIFETIME_VALUE,
    IS_ACTIVE,
    LAST_PURCHASE_DATE,
    DATEDIFF('day', ACCOUNT_CREATED_DATE, CURRENT_DATE()) AS CUSTOMER_AGE_DAYS,
    DATEDIFF('day', LAST_PURCHASE_DATE, CURRENT_DATE()) AS DAYS_SINCE_LAST_PURCHASE,
    CASE
        WHEN DATEDIFF('day', LAST_PURCHASE_DATE, CURRENT_DATE()) <= 30 THEN 'Highly Active'
        WHEN DATEDIFF('day', LAST_PURCHASE_DATE, CURRENT_DATE()) <= 90 THEN 'Active'
        WHEN DATEDIFF('day', LAST_PURCHASE_DATE, CURRENT_DATE()) <= 180 THEN 'At Risk'
        ELSE 'Inactive'
    END AS CUSTOMER_STATUS,
    CASE
        WHEN EMAIL IS NULL OR EMAIL = '' THEN FALSE
        WHEN PHONE IS NULL OR PHONE = '' THEN FALSE
        ELSE TRUE
    END AS HAS_COMPLETE_CONTACT_INFO,
    CURRENT_TIMESTAMP() AS CURATED_TIMESTAMP
FROM ` + raw("CUSTOMERS") + `
WHERE CUSTOMER_ID IS NOT NULL`

var curatedProducts = `SELECT
    PRODUCT_ID,
    PRODUCT_NAME,
    CATEGORY,
    SUBCATEGORY,
    BRAND,
    UNIT_PRICE,
    COST,
    MARGIN_PCT,
    IN_STOCK,
    STOCK_QUANTITY,
    SUPPLIER_ID,
    IS_ACTIVE,
    UNIT_PRICE - COST AS PROFIT_PER_UNIT,
    CASE
        WHEN UNIT_PRICE < 50 THEN 'Low'
        WHEN UNIT_PRICE < 200 THEN 'Medium'
        WHEN UNIT_PRICE < 500 THEN 'High'
        ELSE 'Premium'
    END AS PRICE_TIER,
    CASE
        WHEN STOCK_QUANTITY = 0 THEN 'Out of Stock'
        WHEN STOCK_QUANTITY < 50 THEN 'Low Stock'
        WHEN STOCK_QUANTITY < 200 THEN 'Adequate'
        ELSE 'Well Stocked'
    END AS STOCK_STATUS,
    CASE
        WHEN PRODUCT_NAME IS NULL OR PRODUCT_NAME = '' THEN FALSE
        WHEN UNIT_PRICE IS NULL OR UNIT_PRICE <= 0 THEN FALSE
        WHEN COST IS NULL OR COST < 0 THEN FALSE
        ELSE TRUE
    END AS DATA_QUALITY_FLAG,
    CURRENT_TIMESTAMP() AS CURATED_TIMESTAMP
FROM ` + raw("PRODUCTS") + `
WHERE PRODUCT_ID IS NOT NULL`

// curatedTransactions joins the curated dimensions, so it runs last
var curatedTransactions = `SELECT
    t.TRANSACTION_ID,
    t.TRANSACTION_DATE,
    t.TRANSACTION_TIMESTAMP,
    t.CUSTOMER_ID,
    t.STORE_ID,
    t.PRODUCT_ID,
    t.QUANTITY,
    t.UNIT_PRICE,
    t.DISCOUNT_PCT,
    t.TOTAL_AMOUNT,
    t.PAYMENT_METHOD,
    t.CHANNEL,
    YEAR(t.TRANSACTION_DATE) AS TRANSACTION_YEAR,
    QUARTER(t.TRANSACTION_DATE) AS TRANSACTION_QUARTER,
    MONTH(t.TRANSACTION_DATE) AS TRANSACTION_MONTH,
    DAYOFWEEK(t.TRANSACTION_DATE) AS TRANSACTION_DAY_OF_WEEK,
    HOUR(t.TRANSACTION_TIMESTAMP) AS TRANSACTION_HOUR,
    CASE
        WHEN DAYOFWEEK(t.TRANSACTION_DATE) IN (0, 6) THEN TRUE
        ELSE FALSE
    END AS IS_WEEKEND,
    t.UNIT_PRICE * t.QUANTITY AS SUBTOTAL,
    (t.UNIT_PRICE * t.QUANTITY * t.DISCOUNT_PCT / 100) AS DISCOUNT_AMOUNT,
    t.TOTAL_AMOUNT / t.QUANTITY AS EFFECTIVE_PRICE_PER_UNIT,
    c.CUSTOMER_SEGMENT,
    c.LOYALTY_TIER,
    p.CATEGORY AS PRODUCT_CATEGORY,
    p.BRAND AS PRODUCT_BRAND,
    p.COST AS PRODUCT_COST,
    t.TOTAL_AMOUNT - (p.COST * t.QUANTITY) AS TRANSACTION_PROFIT,
    CASE
        WHEN t.CUSTOMER_ID IS NULL THEN FALSE
        WHEN t.PRODUCT_ID IS NULL THEN FALSE
        WHEN t.TOTAL_AMOUNT IS NULL OR t.TOTAL_AMOUNT <= 0 THEN FALSE
        WHEN t.QUANTITY IS NULL OR t.QUANTITY <= 0 THEN FALSE
        ELSE TRUE
    END AS DATA_QUALITY_FLAG,
    CURRENT_TIMESTAMP() AS CURATED_TIMESTAMP
FROM ` + raw("TRANSACTIONS") + ` t
LEFT JOIN ` + curated("CUSTOMERS") + ` c
    ON t.CUSTOMER_ID = c.CUSTOMER_ID
LEFT JOIN ` + curated("PRODUCTS") + ` p
    ON t.PRODUCT_ID = p.PRODUCT_ID
WHERE t.TRANSACTION_ID IS NOT NULL`

var dailySalesSummary = `SELECT
    TRANSACTION_DATE,
    COUNT(DISTINCT TRANSACTION_ID) AS TRANSACTION_COUNT,
    COUNT(DISTINCT CUSTOMER_ID) AS UNIQUE_CUSTOMERS,
    SUM(TOTAL_AMOUNT) AS TOTAL_REVENUE,
    SUM(TRANSACTION_PROFIT) AS TOTAL_PROFIT,
    AVG(TOTAL_AMOUNT) AS AVG_TRANSACTION_VALUE,
    SUM(CASE WHEN CHANNEL = 'Online' THEN TOTAL_AMOUNT ELSE 0 END) AS ONLINE_REVENUE,
    SUM(CASE WHEN CHANNEL = 'In-Store' THEN TOTAL_AMOUNT ELSE 0 END) AS INSTORE_REVENUE,
    SUM(CASE WHEN CHANNEL = 'Mobile App' THEN TOTAL_AMOUNT ELSE 0 END) AS MOBILE_REVENUE
FROM ` + curated("TRANSACTIONS") + `
WHERE DATA_QUALITY_FLAG = TRUE
GROUP BY TRANSACTION_DATE`

var customerLTV = `SELECT
    c.CUSTOMER_ID,
    c.FULL_NAME,
    c.CUSTOMER_SEGMENT,
    c.LOYALTY_TIER,
    COUNT(DISTINCT t.TRANSACTION_ID) AS TRANSACTION_COUNT,
    SUM(t.TOTAL_AMOUNT) AS TOTAL_SPENT,
    AVG(t.TOTAL_AMOUNT) AS AVG_TRANSACTION,
    MAX(t.TRANSACTION_DATE) AS LAST_PURCHASE_DATE,
    DATEDIFF('day', MAX(t.TRANSACTION_DATE), CURRENT_DATE()) AS DAYS_SINCE_LAST_PURCHASE
FROM ` + curated("CUSTOMERS") + ` c
LEFT JOIN ` + curated("TRANSACTIONS") + ` t
    ON c.CUSTOMER_ID = t.CUSTOMER_ID
GROUP BY c.CUSTOMER_ID, c.FULL_NAME, c.CUSTOMER_SEGMENT, c.LOYALTY_TIER`

var customerTransactionSummary = `SELECT
    c.CUSTOMER_ID,
    c.FULL_NAME,
    c.CUSTOMER_SEGMENT,
    c.LOYALTY_TIER,
    COUNT(DISTINCT t.TRANSACTION_ID) AS TOTAL_TRANSACTIONS,
    SUM(t.TOTAL_AMOUNT) AS TOTAL_SPENT,
    AVG(t.TOTAL_AMOUNT) AS AVG_TRANSACTION_VALUE,
    MAX(t.TRANSACTION_DATE) AS LAST_TRANSACTION_DATE,
    MIN(t.TRANSACTION_DATE) AS FIRST_TRANSACTION_DATE,
    CURRENT_TIMESTAMP() AS LAST_UPDATED
FROM ` + curated("CUSTOMERS") + ` c
LEFT JOIN ` + curated("TRANSACTIONS") + ` t
    ON c.CUSTOMER_ID = t.CUSTOMER_ID
GROUP BY c.CUSTOMER_ID, c.FULL_NAME, c.CUSTOMER_SEGMENT, c.LOYALTY_TIER`

// Secure views exposed through the share. None of them carry PII.
var sharedViews = []struct {
	name  string
	query string
}{
	{"CUSTOMER_SUMMARY", `SELECT
    CUSTOMER_ID,
    CUSTOMER_SEGMENT,
    LOYALTY_TIER,
    LIFETIME_VALUE,
    CUSTOMER_AGE_DAYS,
    CUSTOMER_STATUS
FROM ` + curated("CUSTOMERS") + `
WHERE IS_ACTIVE = TRUE`},
	{"SALES_METRICS", `SELECT
    TRANSACTION_DATE,
    TRANSACTION_YEAR,
    TRANSACTION_QUARTER,
    TRANSACTION_MONTH,
    PRODUCT_CATEGORY,
    CHANNEL,
    COUNT(DISTINCT TRANSACTION_ID) AS TRANSACTION_COUNT,
    SUM(TOTAL_AMOUNT) AS TOTAL_REVENUE,
    AVG(TOTAL_AMOUNT) AS AVG_TRANSACTION_VALUE
FROM ` + curated("TRANSACTIONS") + `
WHERE DATA_QUALITY_FLAG = TRUE
GROUP BY
    TRANSACTION_DATE, TRANSACTION_YEAR, TRANSACTION_QUARTER,
    TRANSACTION_MONTH, PRODUCT_CATEGORY, CHANNEL`},
	{"PRODUCT_PERFORMANCE", `SELECT
    p.PRODUCT_ID,
    p.PRODUCT_NAME,
    p.CATEGORY,
    p.SUBCATEGORY,
    p.BRAND,
    p.PRICE_TIER,
    COUNT(t.TRANSACTION_ID) AS UNITS_SOLD,
    SUM(t.TOTAL_AMOUNT) AS TOTAL_REVENUE
FROM ` + curated("PRODUCTS") + ` p
LEFT JOIN ` + curated("TRANSACTIONS") + ` t
    ON p.PRODUCT_ID = t.PRODUCT_ID
WHERE p.IS_ACTIVE = TRUE
GROUP BY p.PRODUCT_ID, p.PRODUCT_NAME, p.CATEGORY,
         p.SUBCATEGORY, p.BRAND, p.PRICE_TIER`},
}

// SharedViews returns the names of the secure views granted to the share
func SharedViews() []string {
	names := make([]string, len(sharedViews))
	for i, v := range sharedViews {
		names[i] = v.name
	}
	return names
}

func shareMonitoringView(share string) string {
	return `SELECT
    CURRENT_TIMESTAMP() AS MONITORING_TIMESTAMP,
    ` + sqlgen.Quote(share) + ` AS SHARE_NAME,
    'ACTIVE' AS SHARE_STATUS,
    'Demo monitoring - use ACCOUNT_USAGE in production' AS NOTE`
}
