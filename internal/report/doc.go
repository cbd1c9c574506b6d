// Package report prints the cost-by-service table.
//
// Columns are padded by display width rather than bytes, so accented
// headers such as "Serviço" line up with the rows below them.
package report
