/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
// @title           Collect Gin API
// @version         1.0
// @description     Collection task engine API server for declarative data collection tasks
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey ProjectID
// @in header
// @name X-Project-ID
// @description Project identifier scoping all task and datasource operations
package main

import "github.com/dfops/collect-gin/cmd"

func main() {
	cmd.Execute()
}
