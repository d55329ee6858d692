package main

import (
	"fmt"
	"os"
)

// @title           Filmshelf API
// @version         1.0
// @description     JSON API of the Filmshelf movie collection and lending tracker.
// @host            localhost:5000
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
