// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; repositories convert between the two.
//
// Structure:
// - base.go: shared columns
// - clinic.go: clinic tax profile
// - source.go: billing source tables read by the source adapters
// - ledger.go: classified transactions, monthly snapshots and tax figures
// - payment.go: payments, webhook deliveries and fulfillment requests
package models
