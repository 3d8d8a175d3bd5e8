// cmd/catalogctl/main.go
package main

import "github.com/your-org/ecommerce-core/cmd/catalogctl/commands"

func main() {
	commands.Execute()
}
