package testutil

import (
	"time"
)

// SampleConnectionsTOML holds two profiles and a default
const SampleConnectionsTOML = `default_connection_name = "demo_connection"

[default]
account = "xy12345.us-east-1"
user = "analyst"
password = "secret"
warehouse = "COMPUTE_WH"
role = "ACCOUNTADMIN"

[demo_connection]
account = "xy12345.us-east-1"
username = "lab_user"
private_key_file = "/keys/rsa_key.p8"
warehouse = "DEMO_WH"
`

// ReferenceDate is the fixed "now" used by generator tests
func ReferenceDate() time.Time {
	return time.Date(2025, 11, 18, 0, 0, 0, 0, time.UTC)
}
