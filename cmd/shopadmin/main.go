// Command shopadmin browses and edits shop back-office tables.
package main

import (
	"os"

	"github.com/billyloki/module-shop-admin/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
