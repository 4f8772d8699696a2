// Package retail models wholesale orders placed by retail stores: the cost
// assumptions used to price them, courier delivery bands, and the store,
// monthly and period summaries built from the warehouse order history.
package retail
