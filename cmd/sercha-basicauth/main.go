package main

// @title           Sercha Basic Auth API
// @version         1.0
// @description     Local backend-for-frontend for basic-auth sign-in, registration and password reset.

// @contact.name   Sercha OSS
// @contact.url    https://github.com/custodia-labs/sercha-basicauth/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @schemes   http

import (
	"os"
)

var version = "dev"

func main() {
	cmd := NewRootCmd()
	cmd.Version = version

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
