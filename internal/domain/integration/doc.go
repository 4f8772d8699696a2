// Package integration contains the Integration bounded context.
// This context describes the external systems the dashboards read from.
//
// Key concepts:
//   - CommercePlatform: Port for the storefront (orders, variant costs, products)
//   - FulfillmentPlatform: Port for the warehouse system (processed orders, order details)
//   - SubscriptionPlatform: Port for the subscription billing app
//   - SalesSheetSource: Port for the published retail sales spreadsheet
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
//
// Every port is read-only. Nothing in this context writes back to a platform.
package integration
