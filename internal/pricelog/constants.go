package pricelog

// TableName is the price log table created by migration 000001.
const TableName = "omnibus_price_log"

// DefaultRetentionDays is the fallback retention window for Purge.
// MUST match config.DefaultRetentionDays to maintain consistency.
const DefaultRetentionDays = 31
