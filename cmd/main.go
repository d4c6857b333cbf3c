// @title       Expense Tracker API
// @version     1.0
// @description Personal expense tracking: periods, summaries, CSV import and export.
// @BasePath    /
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
